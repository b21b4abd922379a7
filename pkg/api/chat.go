package api

import (
	"context"
	"fmt"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// ChatUser is the other party of a direct chat
type ChatUser struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// Message is a direct or group chat message. Exactly one of ChatID and
// GroupChatID is set.
type Message struct {
	ID          int64        `json:"id"`
	ChatID      int64        `json:"chat_id,omitempty"`
	GroupChatID int64        `json:"group_chat_id,omitempty"`
	SenderID    int64        `json:"sender_id"`
	Content     string       `json:"content"`
	CreatedAt   string       `json:"created_at"`
	Sender      *UserSummary `json:"sender,omitempty"`
}

// CreatedTime parses CreatedAt, returning the zero time when it is unparseable
func (m Message) CreatedTime() time.Time {
	return ParseTimestamp(m.CreatedAt)
}

// ChatListItem is one row of the direct chat list
type ChatListItem struct {
	ChatID        int64    `json:"chat_id"`
	Receiver      ChatUser `json:"receiver"`
	LatestMessage *Message `json:"latest_message"`
	LastUpdated   string   `json:"last_updated"`
}

// CombinedChatItem is one row of the direct plus group chat list
type CombinedChatItem struct {
	ChatID            int64     `json:"chat_id"`
	Type              string    `json:"type"`
	Name              string    `json:"name"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	Receiver          *ChatUser `json:"receiver,omitempty"`
	LatestMessage     *Message  `json:"latest_message"`
	LastUpdated       string    `json:"last_updated"`
}

// Chat types in the combined list
const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

// ChatHistory is one page of a direct conversation, newest first
type ChatHistory struct {
	ChatID   int64     `json:"chat_id"`
	Receiver *ChatUser `json:"receiver"`
	Messages []Message `json:"messages"`
}

// timestampLayouts are the formats the server has used for created_at
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// ParseTimestamp parses a server timestamp. Timestamps without a zone are UTC.
func ParseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListDirectChats retrieves one page of direct chats
func ListDirectChats(ctx context.Context, page, limit int) ([]ChatListItem, error) {
	logger.Debug("Fetching direct chats", "page", page, "limit", limit)

	var resp envelope[struct {
		Chats []ChatListItem `json:"chats"`
	}]
	endpoint := fmt.Sprintf("/chat/direct/list?page=%d&limit=%d", page, limit)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch direct chats: %w", err)
	}
	return resp.Data.Chats, nil
}

// ListAllChats retrieves one page of direct and group chats together
func ListAllChats(ctx context.Context, page, limit int) ([]CombinedChatItem, error) {
	logger.Debug("Fetching combined chats", "page", page, "limit", limit)

	// Chats arrive either at data.chats or at data.data.chats
	var resp envelope[struct {
		Chats []CombinedChatItem `json:"chats"`
		Data  *struct {
			Chats []CombinedChatItem `json:"chats"`
		} `json:"data"`
	}]
	endpoint := fmt.Sprintf("/chat/list/all?page=%d&limit=%d", page, limit)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}

	if resp.Data.Data != nil && len(resp.Data.Data.Chats) > 0 {
		return resp.Data.Data.Chats, nil
	}
	return resp.Data.Chats, nil
}

// StartDirectChat opens (or finds) the direct chat with a user and returns its id
func StartDirectChat(ctx context.Context, userID int64) (int64, error) {
	logger.Debug("Starting direct chat", "user_id", userID)

	type chatRef struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	}
	var resp envelope[struct {
		chatRef
		Data *chatRef `json:"data"`
	}]
	if err := client.Post(ctx, fmt.Sprintf("/chat/direct/start/%d", userID), map[string]string{}, &resp); err != nil {
		return 0, fmt.Errorf("failed to start chat: %w", err)
	}

	if resp.Data.Data != nil && resp.Data.Data.Chat.ID != 0 {
		return resp.Data.Data.Chat.ID, nil
	}
	if resp.Data.Chat.ID != 0 {
		return resp.Data.Chat.ID, nil
	}
	return 0, fmt.Errorf("failed to start chat: no chat id in response")
}

// GetDirectMessages retrieves one page of a direct conversation
func GetDirectMessages(ctx context.Context, chatID int64, page, limit int) (*ChatHistory, error) {
	logger.Debug("Fetching direct messages", "chat_id", chatID, "page", page)

	var resp envelope[ChatHistory]
	endpoint := fmt.Sprintf("/chat/direct/%d/messages?page=%d&limit=%d", chatID, page, limit)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return &resp.Data, nil
}

// SendDirectMessage posts a message to a direct chat
func SendDirectMessage(ctx context.Context, chatID int64, content string) (*Message, error) {
	logger.Debug("Sending direct message", "chat_id", chatID)

	body := map[string]interface{}{"chat_id": chatID, "content": content}
	var resp envelope[struct {
		MessageData Message `json:"message_data"`
	}]
	if err := client.Post(ctx, "/chat/direct/send", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &resp.Data.MessageData, nil
}

// EditDirectMessage replaces a direct message's content
func EditDirectMessage(ctx context.Context, messageID int64, content string) error {
	logger.Debug("Editing direct message", "message_id", messageID)

	body := map[string]string{"content": content}
	if err := client.Put(ctx, fmt.Sprintf("/chat/direct-chat/edit-message/%d", messageID), body, nil); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// DeleteDirectMessage deletes a direct message for the viewer or for everyone
func DeleteDirectMessage(ctx context.Context, messageID int64, deleteForAll bool) error {
	logger.Debug("Deleting direct message", "message_id", messageID, "for_all", deleteForAll)

	body := map[string]bool{"delete_for_all": deleteForAll}
	if err := client.Delete(ctx, fmt.Sprintf("/chat/direct-chat/delete-message/%d", messageID), body, nil); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// DeleteDirectChat deletes a whole direct chat
func DeleteDirectChat(ctx context.Context, chatID int64) error {
	logger.Debug("Deleting direct chat", "chat_id", chatID)

	if err := client.Delete(ctx, fmt.Sprintf("/chat/direct-chat/delete-chat/%d", chatID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}
