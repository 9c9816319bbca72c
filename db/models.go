package db

import "time"

// Conversation is a locally cached copy of a server-side conversation
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a locally cached chat message. FileIDs and Citations are
// stored as JSON arrays; the cache never interprets them.
type Message struct {
	ID             int64     `json:"id"`
	ServerID       string    `json:"server_id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	FileIDs        string    `json:"file_ids"`
	Citations      string    `json:"citations"`
	CreatedAt      time.Time `json:"created_at"`
}

// Setting is a key-value entry; the credential store lives here
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
