package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// history builds newest-first pages of n messages each, numbered from the
// oldest message (id 1)
func history(pages, n int) [][]api.Message {
	total := pages * n
	out := make([][]api.Message, pages)
	for p := 0; p < pages; p++ {
		for i := 0; i < n; i++ {
			id := int64(total - p*n - i)
			out[p] = append(out[p], api.Message{
				ID:        id,
				ChatID:    41,
				SenderID:  12,
				Content:   fmt.Sprintf("m%d", id),
				CreatedAt: base.Add(time.Duration(id) * time.Minute).Format(time.RFC3339),
			})
		}
	}
	return out
}

type fakeTransport struct {
	DirectTransport
	pages   [][]api.Message
	sendErr error
	nextID  int64
	edits   []string
}

func (f *fakeTransport) Fetch(_ context.Context, page, _ int) ([]api.Message, error) {
	if page > len(f.pages) {
		return nil, nil
	}
	return append([]api.Message(nil), f.pages[page-1]...), nil
}

func (f *fakeTransport) Send(_ context.Context, content string) (*api.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	return &api.Message{ID: f.nextID, ChatID: 41, SenderID: 12, Content: content}, nil
}

func (f *fakeTransport) Edit(_ context.Context, id int64, content string) error {
	f.edits = append(f.edits, fmt.Sprintf("%d:%s", id, content))
	return nil
}

func (f *fakeTransport) Delete(context.Context, int64, bool) error {
	return nil
}

func contentIDs(msgs []api.Message) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func assertOldestFirst(t *testing.T, msgs []api.Message) {
	t.Helper()
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedTime().Before(msgs[i-1].CreatedTime()),
			"message %d is older than message %d", msgs[i].ID, msgs[i-1].ID)
	}
}

func TestConversationIsOldestFirst(t *testing.T) {
	ft := &fakeTransport{pages: history(3, 4)}
	c := NewConversation(ft, 12)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, []int64{9, 10, 11, 12}, contentIDs(c.Messages()))

	require.NoError(t, c.LoadOlder(ctx))
	require.NoError(t, c.LoadOlder(ctx))
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, contentIDs(c.Messages()))
	assertOldestFirst(t, c.Messages())

	require.NoError(t, c.LoadOlder(ctx))
	assert.False(t, c.HasMore())
	assert.Len(t, c.Messages(), 12)
}

func TestConversationSend(t *testing.T) {
	ft := &fakeTransport{pages: history(1, 2), nextID: 100}
	c := NewConversation(ft, 12)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	msg, err := c.Send(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Len(t, c.Messages(), 2)

	msg, err = c.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(101), msg.ID)
	assert.Equal(t, []int64{1, 2, 101}, contentIDs(c.Messages()))

	ft.sendErr = errors.New("offline")
	_, err = c.Send(ctx, "again")
	assert.Error(t, err)
	assert.Len(t, c.Messages(), 3)
}

func TestConversationEditAndRemove(t *testing.T) {
	ft := &fakeTransport{pages: history(1, 3)}
	c := NewConversation(ft, 12)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.Edit(ctx, 2, "fixed"))
	assert.Equal(t, "fixed", c.Messages()[1].Content)
	assert.Equal(t, []string{"2:fixed"}, ft.edits)

	require.NoError(t, c.Remove(ctx, 2, true))
	assert.Equal(t, []int64{1, 3}, contentIDs(c.Messages()))
}

func TestCanEditOrDelete(t *testing.T) {
	now := base.Add(time.Hour)
	mine := api.Message{SenderID: 12, CreatedAt: now.Add(-9 * time.Minute).Format(time.RFC3339)}
	stale := api.Message{SenderID: 12, CreatedAt: now.Add(-10 * time.Minute).Format(time.RFC3339)}
	theirs := api.Message{SenderID: 7, CreatedAt: now.Format(time.RFC3339)}
	undated := api.Message{SenderID: 12}

	assert.True(t, CanEditOrDelete(mine, 12, now))
	assert.False(t, CanEditOrDelete(stale, 12, now))
	assert.False(t, CanEditOrDelete(theirs, 12, now))
	assert.False(t, CanEditOrDelete(undated, 12, now))
	assert.False(t, CanEditOrDelete(mine, 0, now))

	c := NewConversation(&fakeTransport{}, 12)
	assert.True(t, c.CanEditOrDelete(mine, now))
}

type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string][]realtime.Handler
}

func (f *fakeSubscriber) On(event string, fn realtime.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = map[string][]realtime.Handler{}
	}
	f.handlers[event] = append(f.handlers[event], fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, event)
	}
}

func (f *fakeSubscriber) emit(event, payload string) {
	f.mu.Lock()
	handlers := append([]realtime.Handler(nil), f.handlers[event]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(realtime.Event{Name: event, Data: json.RawMessage(payload)})
	}
}

func TestDirectConversationLiveMessages(t *testing.T) {
	ft := &fakeTransport{DirectTransport: DirectTransport{ChatID: 41}, pages: history(1, 2)}
	c := NewConversation(ft, 12)
	require.NoError(t, c.Load(context.Background()))

	sub := &fakeSubscriber{}
	var live []api.Message
	off := c.Subscribe(sub, func(m api.Message) { live = append(live, m) })

	sub.emit("notify_12", `{"chat_id":41,"sender_id":7,"content":"hey"}`)
	sub.emit("notify_12", `{"chat_id":99,"sender_id":7,"content":"other chat"}`)
	sub.emit("notify_12", `{"user_id":12,"content":"ada liked your post"}`)
	sub.emit("notify_7", `{"chat_id":41,"sender_id":7,"content":"wrong user"}`)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hey", msgs[2].Content)
	assert.NotZero(t, msgs[2].ID)
	assert.NotEmpty(t, msgs[2].CreatedAt)
	require.Len(t, live, 1)

	off()
	sub.emit("notify_12", `{"chat_id":41,"sender_id":7,"content":"after"}`)
	assert.Len(t, c.Messages(), 3)
}

func TestGroupTransportMatch(t *testing.T) {
	gt := GroupTransport{GroupID: 3}
	now := base

	msg, ok := gt.Match(realtime.Event{Name: "notify_12", Data: json.RawMessage(
		`{"type":"group_onboarding","message":{"id":55,"group_chat_id":3,"sender_id":7,"content":"yo","created_at":"2025-03-01T11:59:00"}}`)}, now)
	require.True(t, ok)
	assert.Equal(t, int64(55), msg.ID)
	assert.Equal(t, "yo", msg.Content)

	_, ok = gt.Match(realtime.Event{Data: json.RawMessage(`{"type":"group_onboarding","message":{"group_chat_id":4}}`)}, now)
	assert.False(t, ok)

	_, ok = gt.Match(realtime.Event{Data: json.RawMessage(`{"chat_id":3,"content":"direct"}`)}, now)
	assert.False(t, ok)
}

func TestConversationSkipsDuplicateIDs(t *testing.T) {
	ft := &fakeTransport{pages: history(1, 1)}
	c := NewConversation(ft, 12)
	require.NoError(t, c.Load(context.Background()))

	assert.False(t, c.appendMessage(api.Message{ID: 1}))
	assert.True(t, c.appendMessage(api.Message{ID: 2}))
}
