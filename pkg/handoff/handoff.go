// Package handoff carries state from one command to the next: a story that
// was just posted, the feed location last chosen and a chat to open.
package handoff

import (
	"os"
	"time"

	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
)

// PendingChat is a conversation the next messaging command should open
type PendingChat struct {
	ChatID  int64  `json:"chat_id,omitempty"`
	GroupID int64  `json:"group_id,omitempty"`
	UserID  int64  `json:"user_id,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Intent is the typed state handed between commands
type Intent struct {
	NewPost      *api.Post    `json:"new_post,omitempty"`
	FeedLocation string       `json:"feed_location,omitempty"`
	PendingChat  *PendingChat `json:"pending_chat,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Load reads the intent, returning a zero Intent when none is stored
func Load() (Intent, error) {
	var in Intent
	data, err := os.ReadFile(config.GetHandoffPath())
	if err != nil {
		if os.IsNotExist(err) {
			return in, nil
		}
		return in, err
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return Intent{}, err
	}
	return in, nil
}

// Save writes the intent
func Save(in Intent) error {
	in.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetHandoffPath(), data, 0600)
}

// Update loads the intent, applies fn and saves the result
func Update(fn func(*Intent)) error {
	in, err := Load()
	if err != nil {
		return err
	}
	fn(&in)
	return Save(in)
}

// ConsumeNewPost returns the freshly posted story once and clears it
func ConsumeNewPost() (*api.Post, error) {
	in, err := Load()
	if err != nil || in.NewPost == nil {
		return nil, err
	}
	post := in.NewPost
	in.NewPost = nil
	if err := Save(in); err != nil {
		return nil, err
	}
	return post, nil
}

// ConsumePendingChat returns the pending chat once and clears it
func ConsumePendingChat() (*PendingChat, error) {
	in, err := Load()
	if err != nil || in.PendingChat == nil {
		return nil, err
	}
	chat := in.PendingChat
	in.PendingChat = nil
	if err := Save(in); err != nil {
		return nil, err
	}
	return chat, nil
}

// SetFeedLocation records the location the feed was last switched to
func SetFeedLocation(location string) error {
	return Update(func(in *Intent) {
		in.FeedLocation = location
	})
}

// Clear removes the stored intent
func Clear() error {
	err := os.Remove(config.GetHandoffPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
