package db

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettingsRoundTrip(t *testing.T) {
	database := newTestDB(t)

	if v, err := database.Get("access_token"); err != nil || v != "" {
		t.Fatalf("Get on empty store = (%q, %v), want (\"\", nil)", v, err)
	}

	if err := database.Set("access_token", "tok-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := database.Get("access_token"); v != "tok-1" {
		t.Errorf("Get = %q, want tok-1", v)
	}

	// Overwrite
	if err := database.Set("access_token", "tok-2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := database.Get("access_token"); v != "tok-2" {
		t.Errorf("Get after overwrite = %q, want tok-2", v)
	}

	if err := database.Delete("access_token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if v, _ := database.Get("access_token"); v != "" {
		t.Errorf("Get after delete = %q, want empty", v)
	}

	// Deleting a missing key is not an error
	if err := database.Delete("access_token"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestReplaceMessages(t *testing.T) {
	database := newTestDB(t)

	if err := database.UpsertConversation("conv-1", "First chat"); err != nil {
		t.Fatalf("UpsertConversation failed: %v", err)
	}

	initial := []*Message{
		{ServerID: "m1", ConversationID: "conv-1", Role: "user", Content: "hello"},
		{ServerID: "m2", ConversationID: "conv-1", Role: "assistant", Content: "hi there"},
	}
	if err := database.ReplaceMessages("conv-1", initial); err != nil {
		t.Fatalf("ReplaceMessages failed: %v", err)
	}

	replacement := []*Message{
		{ServerID: "m1", ConversationID: "conv-1", Role: "user", Content: "hello"},
		{ServerID: "m2", ConversationID: "conv-1", Role: "assistant", Content: "hi there"},
		{ServerID: "m3", ConversationID: "conv-1", Role: "user", Content: "what files do I have?"},
	}
	if err := database.ReplaceMessages("conv-1", replacement); err != nil {
		t.Fatalf("ReplaceMessages failed: %v", err)
	}

	msgs, err := database.ListMessages("conv-1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("cached %d messages, want 3", len(msgs))
	}
	if msgs[2].Content != "what files do I have?" {
		t.Errorf("last message = %q, want the new user message", msgs[2].Content)
	}
}

func TestAppendMessageUpsertsByServerID(t *testing.T) {
	database := newTestDB(t)

	if err := database.UpsertConversation("conv-1", "First chat"); err != nil {
		t.Fatalf("UpsertConversation failed: %v", err)
	}

	msg := &Message{ServerID: "m1", ConversationID: "conv-1", Role: "assistant", Content: "draft"}
	if err := database.AppendMessage(msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	msg.Content = "final"
	if err := database.AppendMessage(msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	msgs, err := database.ListMessages("conv-1")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("cached %d messages, want 1", len(msgs))
	}
	if msgs[0].Content != "final" {
		t.Errorf("content = %q, want final", msgs[0].Content)
	}
}

func TestSearchMessages(t *testing.T) {
	database := newTestDB(t)

	if err := database.UpsertConversation("conv-1", "Quarterly report"); err != nil {
		t.Fatalf("UpsertConversation failed: %v", err)
	}
	msgs := []*Message{
		{ServerID: "m1", ConversationID: "conv-1", Role: "user", Content: "summarize the quarterly revenue numbers"},
		{ServerID: "m2", ConversationID: "conv-1", Role: "assistant", Content: "Revenue grew 12% quarter over quarter."},
		{ServerID: "m3", ConversationID: "conv-1", Role: "user", Content: "thanks"},
	}
	if err := database.ReplaceMessages("conv-1", msgs); err != nil {
		t.Fatalf("ReplaceMessages failed: %v", err)
	}

	results, err := database.SearchMessages("revenue", 10)
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("found %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.ConversationID != "conv-1" {
			t.Errorf("result conversation = %q, want conv-1", r.ConversationID)
		}
	}
}
