package messaging

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
)

// MessagePageSize is the page size of conversation history
const MessagePageSize = 20

// EditWindow is how long after sending a message it may be edited or
// deleted. The server has the final say.
const EditWindow = 10 * time.Minute

// Transport is the remote side of one conversation
type Transport interface {
	// Fetch returns one page of history, newest first
	Fetch(ctx context.Context, page, limit int) ([]api.Message, error)
	Send(ctx context.Context, content string) (*api.Message, error)
	Edit(ctx context.Context, messageID int64, content string) error
	Delete(ctx context.Context, messageID int64, deleteForAll bool) error
	// Match extracts a message for this conversation from a notify payload
	Match(ev realtime.Event, now time.Time) (api.Message, bool)
}

// Subscriber delivers realtime events by name
type Subscriber interface {
	On(event string, fn realtime.Handler) func()
}

// Conversation is the message history of one direct chat or group, kept
// oldest first
type Conversation struct {
	transport Transport
	me        int64

	mu       sync.Mutex
	messages []api.Message
	page     int
	hasMore  bool
	loading  bool
}

// NewConversation creates an empty conversation for the session user
func NewConversation(t Transport, userID int64) *Conversation {
	return &Conversation{transport: t, me: userID, page: 1, hasMore: true}
}

// Messages returns a copy of the history, oldest first
func (c *Conversation) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.messages...)
}

// HasMore reports whether older history may exist
func (c *Conversation) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Load replaces the history with the most recent page
func (c *Conversation) Load(ctx context.Context) error {
	return c.load(ctx, 1)
}

// LoadOlder places the next older page before the loaded history
func (c *Conversation) LoadOlder(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	next := c.page + 1
	c.mu.Unlock()
	return c.load(ctx, next)
}

func (c *Conversation) load(ctx context.Context, page int) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	fetched, err := c.transport.Fetch(ctx, page, MessagePageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return err
	}

	older := reversed(fetched)
	if page == 1 {
		c.messages = older
		c.hasMore = len(fetched) > 0
	} else {
		c.messages = append(older, c.messages...)
		if len(fetched) == 0 {
			c.hasMore = false
		}
	}
	c.page = page
	return nil
}

func reversed(in []api.Message) []api.Message {
	out := make([]api.Message, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

// Send posts a message and appends the server's copy. Blank content is
// ignored.
func (c *Conversation) Send(ctx context.Context, content string) (*api.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	msg, err := c.transport.Send(ctx, content)
	if err != nil {
		return nil, err
	}
	c.appendMessage(*msg)
	return msg, nil
}

// Edit replaces a message's content after the server accepts it
func (c *Conversation) Edit(ctx context.Context, messageID int64, content string) error {
	if err := c.transport.Edit(ctx, messageID, content); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			c.messages[i].Content = content
		}
	}
	return nil
}

// Remove deletes a message for the viewer, or for everyone
func (c *Conversation) Remove(ctx context.Context, messageID int64, deleteForAll bool) error {
	if err := c.transport.Delete(ctx, messageID, deleteForAll); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.messages[:0]
	for _, m := range c.messages {
		if m.ID != messageID {
			out = append(out, m)
		}
	}
	c.messages = out
	return nil
}

// CanEditOrDelete reports whether the viewer may still edit or delete msg
func (c *Conversation) CanEditOrDelete(msg api.Message, now time.Time) bool {
	return CanEditOrDelete(msg, c.me, now)
}

// CanEditOrDelete reports whether userID sent msg less than EditWindow ago
func CanEditOrDelete(msg api.Message, userID int64, now time.Time) bool {
	if userID == 0 || msg.SenderID != userID {
		return false
	}
	created := msg.CreatedTime()
	if created.IsZero() {
		return false
	}
	return now.Sub(created) < EditWindow
}

// Subscribe appends live messages for this conversation pushed on the
// viewer's notify event. onMessage, if set, is called for each one. The
// returned function unsubscribes.
func (c *Conversation) Subscribe(sub Subscriber, onMessage func(api.Message)) func() {
	return sub.On(realtime.NotifyEvent(c.me), func(ev realtime.Event) {
		msg, ok := c.transport.Match(ev, time.Now())
		if !ok {
			return
		}
		if c.appendMessage(msg) && onMessage != nil {
			onMessage(msg)
		}
	})
}

// appendMessage adds msg at the end unless a message with its id is
// already held
func (c *Conversation) appendMessage(msg api.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.messages {
		if m.ID == msg.ID {
			logger.Debug("Skipping duplicate message", "message_id", msg.ID)
			return false
		}
	}
	c.messages = append(c.messages, msg)
	return true
}
