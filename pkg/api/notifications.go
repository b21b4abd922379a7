package api

import (
	"context"
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// Notification is an in-app notification
type Notification struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
	PostID    *int64 `json:"post_id,omitempty"`
	SenderID  *int64 `json:"sender_id,omitempty"`
	Type      string `json:"type,omitempty"`
}

// GetNotifications retrieves a user's notifications
func GetNotifications(ctx context.Context, userID int64) ([]Notification, error) {
	logger.Debug("Fetching notifications", "user_id", userID)

	var resp envelope[[]Notification]
	if err := client.Get(ctx, fmt.Sprintf("/notifications/%d", userID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return resp.Data, nil
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(ctx context.Context, notificationID int64) error {
	logger.Debug("Marking notification read", "notification_id", notificationID)

	if err := client.Put(ctx, fmt.Sprintf("/notifications/read/%d", notificationID), nil, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification of a user as read
func MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	logger.Debug("Marking all notifications read", "user_id", userID)

	if err := client.Put(ctx, fmt.Sprintf("/notifications/read/all/%d", userID), nil, nil); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// DeleteNotification deletes one notification
func DeleteNotification(ctx context.Context, notificationID int64) error {
	logger.Debug("Deleting notification", "notification_id", notificationID)

	if err := client.Delete(ctx, fmt.Sprintf("/notifications/delete/%d", notificationID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// DeleteAllNotifications deletes every notification of a user
func DeleteAllNotifications(ctx context.Context, userID int64) error {
	logger.Debug("Deleting all notifications", "user_id", userID)

	if err := client.Delete(ctx, fmt.Sprintf("/notifications/delete/all/%d", userID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}
