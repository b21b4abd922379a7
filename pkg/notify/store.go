// Package notify holds the viewer's in-app notifications and keeps them
// current from realtime pushes.
package notify

import (
	"context"
	"sync"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
)

// Source is the remote side of the notification list
type Source interface {
	Fetch(ctx context.Context, userID int64) ([]api.Notification, error)
	MarkRead(ctx context.Context, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, notificationID int64) error
	DeleteAll(ctx context.Context, userID int64) error
}

// APISource serves notifications from the REST API
type APISource struct{}

func (APISource) Fetch(ctx context.Context, userID int64) ([]api.Notification, error) {
	return api.GetNotifications(ctx, userID)
}

func (APISource) MarkRead(ctx context.Context, notificationID int64) error {
	return api.MarkNotificationRead(ctx, notificationID)
}

func (APISource) MarkAllRead(ctx context.Context, userID int64) error {
	return api.MarkAllNotificationsRead(ctx, userID)
}

func (APISource) Delete(ctx context.Context, notificationID int64) error {
	return api.DeleteNotification(ctx, notificationID)
}

func (APISource) DeleteAll(ctx context.Context, userID int64) error {
	return api.DeleteAllNotifications(ctx, userID)
}

// Subscriber delivers every realtime event
type Subscriber interface {
	OnAny(fn realtime.Handler) func()
}

// Store is the notification list of one user, newest first
type Store struct {
	src Source
	me  int64

	mu    sync.Mutex
	items []api.Notification
}

// NewStore creates an empty list for the session user
func NewStore(src Source, userID int64) *Store {
	return &Store{src: src, me: userID}
}

// Items returns a copy of the list
func (s *Store) Items() []api.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Notification(nil), s.items...)
}

// UnreadCount returns how many notifications are unread
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// Load replaces the list with the server's
func (s *Store) Load(ctx context.Context) error {
	items, err := s.src.Fetch(ctx, s.me)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	return nil
}

// MarkRead marks one notification read once the server confirms
func (s *Store) MarkRead(ctx context.Context, notificationID int64) error {
	if err := s.src.MarkRead(ctx, notificationID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == notificationID {
			s.items[i].IsRead = true
		}
	}
	return nil
}

// MarkAllRead marks every notification read
func (s *Store) MarkAllRead(ctx context.Context) error {
	if err := s.src.MarkAllRead(ctx, s.me); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	return nil
}

// Delete removes one notification
func (s *Store) Delete(ctx context.Context, notificationID int64) error {
	if err := s.src.Delete(ctx, notificationID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Notification, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != notificationID {
			out = append(out, it)
		}
	}
	s.items = out
	return nil
}

// DeleteAll empties the list
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.src.DeleteAll(ctx, s.me); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

// Subscribe prepends notifications pushed to the viewer on any notify_*
// event. onNotification, if set, is called for each one. The returned
// function unsubscribes.
func (s *Store) Subscribe(sub Subscriber, onNotification func(api.Notification)) func() {
	return sub.OnAny(func(ev realtime.Event) {
		if !realtime.IsNotifyEvent(ev.Name) {
			return
		}
		n, ok := s.match(ev)
		if !ok {
			return
		}

		s.mu.Lock()
		s.items = append([]api.Notification{n}, s.items...)
		s.mu.Unlock()

		if onNotification != nil {
			onNotification(n)
		}
	})
}

func (s *Store) match(ev realtime.Event) (api.Notification, bool) {
	if realtime.Classify(ev.Data) != realtime.KindNotification {
		return api.Notification{}, false
	}

	var n api.Notification
	if err := ev.Decode(&n); err != nil {
		logger.Debug("Dropping undecodable notification", "error", err)
		return api.Notification{}, false
	}
	if n.UserID != s.me {
		return api.Notification{}, false
	}
	return n, true
}
