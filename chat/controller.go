package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docchat-client/api"
	"docchat-client/db"
	"docchat-client/utils"
)

// ErrorReply is the fixed assistant message shown when a send fails.
// The underlying error is logged, never surfaced verbatim.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// Message is the controller's view of a chat message. Pending marks an
// optimistic user message that has not been confirmed by the server yet.
type Message struct {
	ID        string
	Role      string
	Content   string
	FileIDs   []int64
	Citations []api.Citation
	Pending   bool
}

// Controller owns the ordered message sequence of the open conversation.
// User messages are appended optimistically under a temporary id and
// reconciled against the server's reply; assistant replies arrive whole
// and are revealed incrementally by the view.
type Controller struct {
	api    *api.Client
	cache  *db.DB
	logger *utils.Logger

	mu             sync.Mutex
	conversationID string
	messages       []Message
	sending        bool

	onMessages            func()
	onConversationChanged func(id string)
}

// NewController creates a chat controller. cache may be nil to disable
// local history caching.
func NewController(client *api.Client, cache *db.DB, logger *utils.Logger) *Controller {
	return &Controller{api: client, cache: cache, logger: logger}
}

// SetMessagesListener registers the callback fired after every change to
// the message sequence.
func (c *Controller) SetMessagesListener(fn func()) {
	c.mu.Lock()
	c.onMessages = fn
	c.mu.Unlock()
}

// SetConversationChangedListener registers the callback fired when the
// tracked conversation id changes (first send, or loading a history).
func (c *Controller) SetConversationChangedListener(fn func(id string)) {
	c.mu.Lock()
	c.onConversationChanged = fn
	c.mu.Unlock()
}

// Messages returns a copy of the current message sequence
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ConversationID returns the currently tracked conversation id, empty
// before the first exchange.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Sending reports whether a send is currently in flight
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Reset clears the local sequence and detaches from the conversation
func (c *Controller) Reset() {
	c.mu.Lock()
	c.conversationID = ""
	c.messages = nil
	c.mu.Unlock()
	c.notifyMessages()
}

// Send posts a user message. Blank input and concurrent sends are
// no-ops. The user message is appended optimistically before the network
// call; on success the temporary entry is swapped for the server's copy
// and the assistant reply is appended; on failure the temporary entry is
// removed and a fixed apology message is appended instead.
func (c *Controller) Send(ctx context.Context, text string, fileIDs []int64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return
	}
	c.sending = true
	tempID := "temp-" + uuid.NewString()
	c.messages = append(c.messages, Message{
		ID:      tempID,
		Role:    "user",
		Content: text,
		FileIDs: fileIDs,
		Pending: true,
	})
	conversationID := c.conversationID
	c.mu.Unlock()
	c.notifyMessages()

	resp, err := c.api.SendChat(ctx, text, conversationID, fileIDs)

	c.mu.Lock()
	c.removeLocked(tempID)
	if err != nil {
		c.logger.Error("Chat send failed: %v", err)
		c.messages = append(c.messages, Message{
			ID:      "error-" + uuid.NewString(),
			Role:    "assistant",
			Content: ErrorReply,
		})
		c.sending = false
		c.mu.Unlock()
		c.notifyMessages()
		return
	}

	assistant := Message{
		ID:        resp.Response.ID,
		Role:      "assistant",
		Content:   resp.Response.Content,
		Citations: resp.Response.Citations,
	}
	if len(assistant.Citations) == 0 {
		assistant.Citations = resp.Citations
	}

	c.messages = append(c.messages,
		Message{
			ID:      resp.Message.ID,
			Role:    "user",
			Content: resp.Message.Content,
			FileIDs: resp.Message.FileIDs,
		},
		assistant,
	)

	changed := resp.ConversationID != "" && resp.ConversationID != c.conversationID
	if changed {
		c.conversationID = resp.ConversationID
	}
	onChanged := c.onConversationChanged
	c.sending = false
	c.mu.Unlock()

	if changed && onChanged != nil {
		onChanged(resp.ConversationID)
	}
	c.notifyMessages()

	c.cacheExchange(resp)
}

// LoadConversation replaces the local sequence with the server's history
// and adopts the id as current.
func (c *Controller) LoadConversation(ctx context.Context, id string) error {
	conv, err := c.api.ChatHistory(ctx, id)
	if err != nil {
		return err
	}

	messages := make([]Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		messages = append(messages, Message{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			FileIDs:   m.FileIDs,
			Citations: m.Citations,
		})
	}

	c.mu.Lock()
	changed := conv.ID != c.conversationID
	c.conversationID = conv.ID
	c.messages = messages
	onChanged := c.onConversationChanged
	c.mu.Unlock()

	if changed && onChanged != nil {
		onChanged(conv.ID)
	}
	c.notifyMessages()

	c.cacheHistory(conv)
	return nil
}

// removeLocked drops the message with the given id, if present
func (c *Controller) removeLocked(id string) {
	for i, m := range c.messages {
		if m.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}

func (c *Controller) notifyMessages() {
	c.mu.Lock()
	fn := c.onMessages
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// cacheExchange writes a confirmed exchange through to the local cache.
// The cache is advisory: failures are logged and never affect the
// displayed sequence.
func (c *Controller) cacheExchange(resp *api.ChatResponse) {
	if c.cache == nil || resp.ConversationID == "" {
		return
	}

	title := resp.Message.Content
	if len(title) > 60 {
		title = title[:60]
	}
	if err := c.cache.UpsertConversation(resp.ConversationID, title); err != nil {
		c.logger.Warn("Failed to cache conversation: %v", err)
		return
	}

	for _, m := range []api.Message{resp.Message, resp.Response} {
		if err := c.cache.AppendMessage(&db.Message{
			ServerID:       m.ID,
			ConversationID: resp.ConversationID,
			Role:           m.Role,
			Content:        m.Content,
			FileIDs:        marshalJSON(m.FileIDs),
			Citations:      marshalJSON(m.Citations),
			CreatedAt:      m.CreatedAt,
		}); err != nil {
			c.logger.Warn("Failed to cache message: %v", err)
		}
	}
}

// cacheHistory mirrors a loaded conversation into the local cache
func (c *Controller) cacheHistory(conv *api.Conversation) {
	if c.cache == nil || conv.ID == "" {
		return
	}

	title := conv.Title
	if title == "" && len(conv.Messages) > 0 {
		title = conv.Messages[0].Content
		if len(title) > 60 {
			title = title[:60]
		}
	}
	if err := c.cache.UpsertConversation(conv.ID, title); err != nil {
		c.logger.Warn("Failed to cache conversation: %v", err)
		return
	}

	cached := make([]*db.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		cached = append(cached, &db.Message{
			ServerID:       m.ID,
			ConversationID: conv.ID,
			Role:           m.Role,
			Content:        m.Content,
			FileIDs:        marshalJSON(m.FileIDs),
			Citations:      marshalJSON(m.Citations),
			CreatedAt:      m.CreatedAt,
		})
	}
	if err := c.cache.ReplaceMessages(conv.ID, cached); err != nil {
		c.logger.Warn("Failed to cache history: %v", err)
	}
}

func marshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
