package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/messaging"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/notify"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
)

// WatchService streams live messages and notifications
type WatchService struct {
	notifications notify.Source
}

// NewWatchService creates a new watch service
func NewWatchService() *WatchService {
	return &WatchService{notifications: notify.APISource{}}
}

// Watch prints pushed messages and notifications until interrupted
func (ws *WatchService) Watch(ctx context.Context) error {
	logger.Debug("Starting watcher")

	me, err := currentUser()
	if err != nil {
		return err
	}

	store := notify.NewStore(ws.notifications, me.UserID)
	if err := store.Load(ctx); err != nil {
		logger.Warn("Failed to load notifications", "error", err)
	}
	chats := messaging.NewCombinedList()
	if err := chats.Refresh(ctx); err != nil {
		logger.Warn("Failed to load chats", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := connectRealtime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	w := output.Writer()
	fmt.Fprintln(w)
	formatter.PrintInfo("Watching as @%s (%d unread notification%s)", me.Username, store.UnreadCount(), pluralize(store.UnreadCount()))
	fmt.Fprintln(w, "Press Ctrl+C to stop")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	unsubNotify := store.Subscribe(rt, nil)
	unsubAll := rt.OnAny(func(ev realtime.Event) {
		if !realtime.IsNotifyEvent(ev.Name) {
			logger.Debug("Ignoring event", "event", ev.Name)
			return
		}
		line, ok := describe(ev, me.UserID)
		if !ok {
			return
		}
		bumpChat(chats, ev, time.Now())
		fmt.Fprintf(w, "[%s] %s\n", time.Now().Format("15:04:05"), line)
	})
	defer func() {
		unsubAll()
		unsubNotify()
	}()

	<-ctx.Done()
	fmt.Fprintln(w)
	formatter.PrintSuccess("Watcher stopped (%d unread notification%s)", store.UnreadCount(), pluralize(store.UnreadCount()))
	return nil
}

// describe renders a push on the viewer's notify event as one line
func describe(ev realtime.Event, me int64) (string, bool) {
	if ev.Name != realtime.NotifyEvent(me) {
		return "", false
	}

	switch realtime.Classify(ev.Data) {
	case realtime.KindDirectMessage:
		var msg api.Message
		if err := ev.Decode(&msg); err != nil {
			return "", false
		}
		return fmt.Sprintf("💬 %s in chat %d: %s", sender(msg), msg.ChatID, formatter.Truncate(msg.Content, 60)), true

	case realtime.KindGroupMessage:
		var envelope struct {
			Message api.Message `json:"message"`
		}
		if err := ev.Decode(&envelope); err != nil {
			return "", false
		}
		msg := envelope.Message
		return fmt.Sprintf("👥 %s in group %d: %s", sender(msg), msg.GroupChatID, formatter.Truncate(msg.Content, 60)), true

	case realtime.KindNotification:
		var n api.Notification
		if err := ev.Decode(&n); err != nil || n.UserID != me {
			return "", false
		}
		return "🔔 " + n.Content, true
	}
	return "", false
}

func sender(msg api.Message) string {
	if msg.Sender != nil && msg.Sender.Username != "" {
		return "@" + msg.Sender.Username
	}
	return fmt.Sprintf("user %d", msg.SenderID)
}

// bumpChat moves the chat a pushed message belongs to to the top
func bumpChat(chats *messaging.CombinedList, ev realtime.Event, now time.Time) {
	switch realtime.Classify(ev.Data) {
	case realtime.KindDirectMessage:
		var msg api.Message
		if ev.Decode(&msg) == nil {
			chats.BumpToTop(api.ChatTypeDirect, msg.ChatID, msg.SenderID, msg.Content, now)
		}
	case realtime.KindGroupMessage:
		var envelope struct {
			Message api.Message `json:"message"`
		}
		if ev.Decode(&envelope) == nil {
			m := envelope.Message
			chats.BumpToTop(api.ChatTypeGroup, m.GroupChatID, m.SenderID, m.Content, now)
		}
	}
}
