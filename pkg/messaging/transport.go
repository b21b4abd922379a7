package messaging

import (
	"context"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
)

// DirectTransport is a one-to-one chat
type DirectTransport struct {
	ChatID int64
}

func (t DirectTransport) Fetch(ctx context.Context, page, limit int) ([]api.Message, error) {
	history, err := api.GetDirectMessages(ctx, t.ChatID, page, limit)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

func (t DirectTransport) Send(ctx context.Context, content string) (*api.Message, error) {
	return api.SendDirectMessage(ctx, t.ChatID, content)
}

func (t DirectTransport) Edit(ctx context.Context, messageID int64, content string) error {
	return api.EditDirectMessage(ctx, messageID, content)
}

func (t DirectTransport) Delete(ctx context.Context, messageID int64, deleteForAll bool) error {
	return api.DeleteDirectMessage(ctx, messageID, deleteForAll)
}

// Match accepts direct message payloads for this chat. Pushed messages
// carry no id or timestamp, so both are stamped on arrival.
func (t DirectTransport) Match(ev realtime.Event, now time.Time) (api.Message, bool) {
	if realtime.Classify(ev.Data) != realtime.KindDirectMessage {
		return api.Message{}, false
	}

	var msg api.Message
	if err := ev.Decode(&msg); err != nil || msg.ChatID != t.ChatID {
		return api.Message{}, false
	}
	stamp(&msg, now)
	return msg, true
}

// GroupTransport is a group chat
type GroupTransport struct {
	GroupID int64
}

func (t GroupTransport) Fetch(ctx context.Context, page, limit int) ([]api.Message, error) {
	return api.GetGroupMessages(ctx, t.GroupID, page, limit)
}

func (t GroupTransport) Send(ctx context.Context, content string) (*api.Message, error) {
	return api.SendGroupMessage(ctx, t.GroupID, content)
}

func (t GroupTransport) Edit(ctx context.Context, messageID int64, content string) error {
	return api.EditGroupMessage(ctx, messageID, content)
}

func (t GroupTransport) Delete(ctx context.Context, messageID int64, deleteForAll bool) error {
	return api.DeleteGroupMessage(ctx, messageID, deleteForAll)
}

// Match accepts group_onboarding envelopes for this group
func (t GroupTransport) Match(ev realtime.Event, now time.Time) (api.Message, bool) {
	if realtime.Classify(ev.Data) != realtime.KindGroupMessage {
		return api.Message{}, false
	}

	var envelope struct {
		Type    string      `json:"type"`
		Message api.Message `json:"message"`
	}
	if err := ev.Decode(&envelope); err != nil || envelope.Message.GroupChatID != t.GroupID {
		return api.Message{}, false
	}
	msg := envelope.Message
	stamp(&msg, now)
	return msg, true
}

func stamp(msg *api.Message, now time.Time) {
	if msg.ID == 0 {
		msg.ID = now.UnixMilli()
	}
	if msg.CreatedAt == "" {
		msg.CreatedAt = now.UTC().Format(time.RFC3339Nano)
	}
}
