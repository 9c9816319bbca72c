package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"docchat-client/db"
)

// ExportFormat represents the export format
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
)

// ConversationExport represents a conversation export structure
type ConversationExport struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Messages  []MessageExport   `json:"messages"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageExport represents a message export structure
type MessageExport struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Citations string    `json:"citations,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportConversationToJSON exports a cached conversation to JSON
func ExportConversationToJSON(database *db.DB, conversationID, outPath string) error {
	export, err := buildExport(database, conversationID)
	if err != nil {
		return err
	}
	export.Metadata = map[string]string{
		"export_version": "1.0",
		"export_date":    time.Now().Format(time.RFC3339),
		"app_name":       "DocChat Client",
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ExportConversationToMarkdown exports a cached conversation to Markdown
func ExportConversationToMarkdown(database *db.DB, conversationID, outPath string) error {
	export, err := buildExport(database, conversationID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", export.Title))
	sb.WriteString(fmt.Sprintf("**Created**: %s\n", export.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Updated**: %s\n\n", export.UpdatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("---\n\n")

	for i, msg := range export.Messages {
		role := "User"
		if msg.Role == "assistant" {
			role = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", role))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
		if msg.Citations != "" && msg.Citations != "null" && msg.Citations != "[]" {
			sb.WriteString(fmt.Sprintf("*Sources: %s*\n\n", msg.Citations))
		}
		if i < len(export.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported %s by DocChat Client*\n", time.Now().Format("2006-01-02 15:04:05")))

	if err := os.WriteFile(outPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func buildExport(database *db.DB, conversationID string) (*ConversationExport, error) {
	conv, err := database.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	messages, err := database.ListMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	export := &ConversationExport{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]MessageExport, 0, len(messages)),
	}
	for _, msg := range messages {
		export.Messages = append(export.Messages, MessageExport{
			ID:        msg.ServerID,
			Role:      msg.Role,
			Content:   msg.Content,
			Citations: msg.Citations,
			CreatedAt: msg.CreatedAt,
		})
	}
	return export, nil
}
