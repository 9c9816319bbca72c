package api

import "time"

// User represents the authenticated account as returned by the backend
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthTokens holds the opaque bearer token pair. The access token is
// short-lived and attached to every request; the refresh token is only
// ever sent to the refresh endpoint.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the payload returned by login and register
type AuthResponse struct {
	User   User       `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

// File status values as reported by the server. The client never sets
// these, it only polls and reflects them.
const (
	FileStatusPending        = "pending"
	FileStatusUploaded       = "uploaded"
	FileStatusProcessing     = "processing"
	FileStatusReady          = "ready"
	FileStatusFailed         = "failed"
	FileStatusDeletionFailed = "deletion_failed"
)

// Ingestion status values, independent of upload status
const (
	IngestionNotStarted = "not_started"
	IngestionInProgress = "in_progress"
	IngestionPartial    = "partial"
	IngestionComplete   = "complete"
	IngestionFailed     = "failed"
)

// FileAsset represents an uploaded document registered with the backend
type FileAsset struct {
	ID              int64                  `json:"id"`
	Filename        string                 `json:"filename"`
	FileType        string                 `json:"file_type"`
	Size            int64                  `json:"size"`
	Status          string                 `json:"status"`
	IngestionStatus string                 `json:"ingestion_status"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// FileListResponse is a page of file assets
type FileListResponse struct {
	Results    []FileAsset `json:"results"`
	Count      int         `json:"count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// FileUpdate is a partial update of a file asset. Nil fields are omitted
// from the PATCH body.
type FileUpdate struct {
	Filename *string                `json:"filename,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PresignResponse is a pre-authorized upload destination: the storage URL
// plus the form fields that must accompany the file part.
type PresignResponse struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
	S3Key  string            `json:"s3_key"`
}

// Citation points an assistant reply at a source file
type Citation struct {
	Filename   string `json:"filename"`
	PageNumber *int   `json:"page_number,omitempty"`
}

// Message represents a single chat message
type Message struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"` // "user" or "assistant"
	Content   string     `json:"content"`
	FileIDs   []int64    `json:"file_ids,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Conversation is an ordered message history identified by id
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Messages []Message `json:"messages"`
}

// ChatResponse is the payload returned by a chat send: the confirmed user
// message, the complete assistant reply and its citations.
type ChatResponse struct {
	ConversationID string     `json:"conversation_id"`
	Message        Message    `json:"message"`
	Response       Message    `json:"response"`
	Citations      []Citation `json:"citations,omitempty"`
}
