package db

import "fmt"

// SearchResult represents a full-text match in the cached history
type SearchResult struct {
	Message        *Message
	ConversationID string
	Snippet        string
}

// SearchMessages performs full-text search over cached messages
func (db *DB) SearchMessages(query string, limit int) ([]*SearchResult, error) {
	rows, err := db.conn.Query(`
		SELECT m.id, m.server_id, m.conversation_id, m.role, m.content, m.file_ids, m.citations, m.created_at,
		       snippet(messages_fts, 0, '<mark>', '</mark>', '...', 32) as snippet
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		var msg Message
		var snippet string
		if err := rows.Scan(&msg.ID, &msg.ServerID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.FileIDs, &msg.Citations, &msg.CreatedAt, &snippet); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, &SearchResult{
			Message:        &msg,
			ConversationID: msg.ConversationID,
			Snippet:        snippet,
		})
	}

	return results, nil
}
