package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/notify"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
)

// NotificationService handles in-app notifications
type NotificationService struct {
	src notify.Source
}

// NewNotificationService creates a notification service backed by the API
func NewNotificationService() *NotificationService {
	return &NotificationService{src: notify.APISource{}}
}

func (ns *NotificationService) store(ctx context.Context) (*notify.Store, error) {
	me, err := currentUser()
	if err != nil {
		return nil, err
	}
	store := notify.NewStore(ns.src, me.UserID)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// List prints the viewer's notifications, newest first
func (ns *NotificationService) List(ctx context.Context, unreadOnly bool) error {
	store, err := ns.store(ctx)
	if err != nil {
		return err
	}

	items := store.Items()
	if unreadOnly {
		unread := items[:0]
		for _, n := range items {
			if !n.IsRead {
				unread = append(unread, n)
			}
		}
		items = unread
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("Notifications", items)
	}

	w := output.Writer()
	unread := store.UnreadCount()
	formatter.Bold.Fprintf(w, "Notifications (%d unread)\n", unread)
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing here.")
		return nil
	}
	now := time.Now()
	for _, n := range items {
		fmt.Fprintln(w, formatter.NotificationLine(n, now))
	}
	return nil
}

// Read marks one notification as read
func (ns *NotificationService) Read(ctx context.Context, notificationID int64) error {
	store, err := ns.store(ctx)
	if err != nil {
		return err
	}
	if err := store.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	formatter.PrintSuccess("Marked notification %d as read (%d unread)", notificationID, store.UnreadCount())
	return nil
}

// ReadAll marks every notification as read
func (ns *NotificationService) ReadAll(ctx context.Context) error {
	store, err := ns.store(ctx)
	if err != nil {
		return err
	}
	if err := store.MarkAllRead(ctx); err != nil {
		return err
	}
	formatter.PrintSuccess("All notifications marked as read")
	return nil
}

// Delete removes one notification
func (ns *NotificationService) Delete(ctx context.Context, notificationID int64) error {
	store, err := ns.store(ctx)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, notificationID); err != nil {
		return err
	}
	formatter.PrintSuccess("Deleted notification %d", notificationID)
	return nil
}

// DeleteAll removes every notification after confirmation
func (ns *NotificationService) DeleteAll(ctx context.Context, force bool) error {
	store, err := ns.store(ctx)
	if err != nil {
		return err
	}

	count := len(store.Items())
	if count == 0 {
		formatter.PrintInfo("No notifications to delete")
		return nil
	}
	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete %d notification%s?", count, pluralize(count)))
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
	}

	if err := store.DeleteAll(ctx); err != nil {
		return err
	}
	formatter.PrintSuccess("Deleted %d notification%s", count, pluralize(count))
	return nil
}
