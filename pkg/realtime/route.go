package realtime

import (
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// NotifyPrefix starts every per-user push event name
const NotifyPrefix = "notify_"

// GroupOnboardingType marks a group message envelope
const GroupOnboardingType = "group_onboarding"

// Kind is what a notify payload carries
type Kind string

const (
	KindDirectMessage Kind = "direct_message"
	KindGroupMessage  Kind = "group_message"
	KindNotification  Kind = "notification"
	KindOther         Kind = "other"
)

// NotifyEvent returns the event name the server pushes to a user on
func NotifyEvent(userID int64) string {
	return NotifyPrefix + strconv.FormatInt(userID, 10)
}

// IsNotifyEvent reports whether name is a per-user push event
func IsNotifyEvent(name string) bool {
	return strings.HasPrefix(name, NotifyPrefix)
}

type payloadShape struct {
	ChatID  *int64 `json:"chat_id"`
	UserID  *int64 `json:"user_id"`
	Type    string `json:"type"`
	Message *struct {
		GroupChatID int64 `json:"group_chat_id"`
	} `json:"message"`
}

// Classify inspects a notify payload. A group_onboarding type means a
// group message, a chat_id means a direct message and a user_id alone means
// a notification.
func Classify(data json.RawMessage) Kind {
	var p payloadShape
	if len(data) == 0 || json.Unmarshal(data, &p) != nil {
		return KindOther
	}

	switch {
	case p.Type == GroupOnboardingType && p.Message != nil:
		return KindGroupMessage
	case p.ChatID != nil:
		return KindDirectMessage
	case p.UserID != nil:
		return KindNotification
	default:
		return KindOther
	}
}
