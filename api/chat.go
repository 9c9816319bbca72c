package api

import (
	"context"
	"net/http"
)

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID string  `json:"conversation_id,omitempty"`
	FileIDs        []int64 `json:"file_ids,omitempty"`
}

// SendChat sends a user message and returns the complete exchange. An
// empty conversationID lets the server start a new conversation.
func (c *Client) SendChat(ctx context.Context, message, conversationID string, fileIDs []int64) (*ChatResponse, error) {
	req := chatRequest{Message: message, ConversationID: conversationID, FileIDs: fileIDs}
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatHistory returns the full message history of a conversation
func (c *Client) ChatHistory(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	if err := c.do(ctx, http.MethodGet, "/chat/history/"+conversationID+"/", nil, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}
