package db

import (
	"fmt"
	"time"
)

// AppendMessage caches a single message. Messages that were already
// cached under the same server id are replaced.
func (db *DB) AppendMessage(msg *Message) error {
	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := db.conn.Exec(
		`INSERT INTO messages (server_id, conversation_id, role, content, file_ids, citations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(server_id) DO UPDATE SET content = excluded.content, citations = excluded.citations`,
		msg.ServerID, msg.ConversationID, msg.Role, msg.Content, msg.FileIDs, msg.Citations, created,
	)
	if err != nil {
		return fmt.Errorf("failed to cache message: %w", err)
	}

	return db.TouchConversation(msg.ConversationID)
}

// ReplaceMessages swaps the cached history of a conversation for the
// server's authoritative copy.
func (db *DB) ReplaceMessages(conversationID string, msgs []*Message) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to clear cached messages: %w", err)
	}

	for _, msg := range msgs {
		created := msg.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := tx.Exec(
			"INSERT INTO messages (server_id, conversation_id, role, content, file_ids, citations, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			msg.ServerID, conversationID, msg.Role, msg.Content, msg.FileIDs, msg.Citations, created,
		); err != nil {
			return fmt.Errorf("failed to cache message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cached messages: %w", err)
	}
	return nil
}

// ListMessages retrieves the cached messages of a conversation in order
func (db *DB) ListMessages(conversationID string) ([]*Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, server_id, conversation_id, role, content, file_ids, citations, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.ServerID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.FileIDs, &msg.Citations, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, nil
}
