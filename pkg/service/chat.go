package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/messaging"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
)

// ChatService handles direct messages
type ChatService struct{}

// NewChatService creates a new chat service
func NewChatService() *ChatService {
	return &ChatService{}
}

// List prints direct and group chats, most recent first
func (cs *ChatService) List(ctx context.Context) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	list := messaging.NewCombinedList()
	if err := list.Refresh(ctx); err != nil {
		return err
	}

	items := list.Items()
	if len(items) == 0 {
		formatter.PrintInfo("No conversations yet. Start one with 'pulse chat start <user-id>'.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		last := ""
		if c.LatestMessage != nil {
			last = formatter.Truncate(c.LatestMessage.Content, 40)
		}
		rows = append(rows, []string{
			c.Type,
			strconv.FormatInt(c.ChatID, 10),
			c.Name,
			last,
			formatter.TimeAgo(api.ParseTimestamp(c.LastUpdated), now),
		})
	}
	return output.PrintList("Conversations", items, []string{"TYPE", "ID", "NAME", "LAST MESSAGE", "UPDATED"}, rows)
}

// conversation loads a direct chat pages deep
func (cs *ChatService) conversation(ctx context.Context, chatID int64, pages int) (*messaging.Conversation, int64, error) {
	me, err := currentUser()
	if err != nil {
		return nil, 0, err
	}
	conv := messaging.NewConversation(messaging.DirectTransport{ChatID: chatID}, me.UserID)
	if err := loadPages(ctx, conv, pages); err != nil {
		return nil, 0, err
	}
	return conv, me.UserID, nil
}

// Open prints the last pages of a direct chat
func (cs *ChatService) Open(ctx context.Context, chatID int64, pages int) error {
	conv, me, err := cs.conversation(ctx, chatID, pages)
	if err != nil {
		return err
	}
	return printConversation(fmt.Sprintf("Chat %d", chatID), conv, me)
}

// Send posts a message to a direct chat
func (cs *ChatService) Send(ctx context.Context, chatID int64, content string) error {
	me, err := currentUser()
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return clierrors.ValidationError("message", "cannot be empty")
	}

	conv := messaging.NewConversation(messaging.DirectTransport{ChatID: chatID}, me.UserID)
	msg, err := conv.Send(ctx, content)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("Sent message %d", msg.ID)
	return nil
}

// Edit changes one of the viewer's recent messages
func (cs *ChatService) Edit(ctx context.Context, chatID, messageID int64, content string) error {
	conv, _, err := cs.conversation(ctx, chatID, 1)
	if err != nil {
		return err
	}
	if err := editMessage(ctx, conv, messageID, content); err != nil {
		return err
	}
	formatter.PrintSuccess("Message %d updated", messageID)
	return nil
}

// Delete removes one of the viewer's recent messages
func (cs *ChatService) Delete(ctx context.Context, chatID, messageID int64, forEveryone bool) error {
	conv, _, err := cs.conversation(ctx, chatID, 1)
	if err != nil {
		return err
	}
	if err := removeMessage(ctx, conv, messageID, forEveryone); err != nil {
		return err
	}
	formatter.PrintSuccess("Message %d deleted", messageID)
	return nil
}

// Start opens the direct chat with a user and queues it for 'chat live'
func (cs *ChatService) Start(ctx context.Context, userID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	chatID, err := api.StartDirectChat(ctx, userID)
	if err != nil {
		return err
	}

	err = handoff.Update(func(in *handoff.Intent) {
		in.PendingChat = &handoff.PendingChat{ChatID: chatID, UserID: userID}
	})
	if err != nil {
		logger.Warn("Failed to save pending chat", "error", err)
	}

	formatter.PrintSuccess("Chat %d is ready. Run 'pulse chat live' to talk.", chatID)
	return nil
}

// DeleteChat deletes a whole direct chat after confirmation
func (cs *ChatService) DeleteChat(ctx context.Context, chatID int64, force bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete chat %d and all its messages?", chatID))
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
	}

	if err := api.DeleteDirectChat(ctx, chatID); err != nil {
		return err
	}
	formatter.PrintSuccess("Chat %d deleted", chatID)
	return nil
}

// Live opens an interactive session on a direct chat. A zero chatID takes
// the chat queued by 'chat start'.
func (cs *ChatService) Live(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		pending, err := handoff.ConsumePendingChat()
		if err != nil {
			return err
		}
		switch {
		case pending != nil && pending.ChatID != 0:
			chatID = pending.ChatID
		case pending != nil && pending.GroupID != 0:
			return NewGroupService().Live(ctx, pending.GroupID)
		default:
			return clierrors.ValidationError("chat", "no chat given and none pending").
				WithSuggestion("Pass a chat id or run 'pulse chat start <user-id>' first.")
		}
	}

	conv, me, err := cs.conversation(ctx, chatID, 1)
	if err != nil {
		return err
	}
	return runLive(ctx, fmt.Sprintf("Chat %d", chatID), conv, me)
}

func loadPages(ctx context.Context, conv *messaging.Conversation, pages int) error {
	if err := conv.Load(ctx); err != nil {
		return err
	}
	for i := 1; i < pages && conv.HasMore(); i++ {
		if err := conv.LoadOlder(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printConversation(title string, conv *messaging.Conversation, me int64) error {
	msgs := conv.Messages()
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print(title, msgs)
	}

	w := output.Writer()
	formatter.Bold.Fprintln(w, title)
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet.")
		return nil
	}
	now := time.Now()
	for _, m := range msgs {
		fmt.Fprintln(w, formatter.MessageLine(m, me, now))
	}
	return nil
}

func findMessage(conv *messaging.Conversation, messageID int64) (api.Message, bool) {
	for _, m := range conv.Messages() {
		if m.ID == messageID {
			return m, true
		}
	}
	return api.Message{}, false
}

// checkEditable rejects messages the viewer did not send in the last
// messaging.EditWindow
func checkEditable(conv *messaging.Conversation, messageID int64) error {
	msg, ok := findMessage(conv, messageID)
	if !ok {
		return clierrors.NotFoundError("Message", strconv.FormatInt(messageID, 10)).
			WithSuggestion("Only messages in the latest page of history can be changed.")
	}
	if !conv.CanEditOrDelete(msg, time.Now()) {
		return clierrors.ValidationError("message", fmt.Sprintf("can only be changed by its sender within %d minutes", int(messaging.EditWindow.Minutes())))
	}
	return nil
}

func editMessage(ctx context.Context, conv *messaging.Conversation, messageID int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return clierrors.ValidationError("message", "cannot be empty")
	}
	if err := checkEditable(conv, messageID); err != nil {
		return err
	}
	return conv.Edit(ctx, messageID, content)
}

func removeMessage(ctx context.Context, conv *messaging.Conversation, messageID int64, forEveryone bool) error {
	if err := checkEditable(conv, messageID); err != nil {
		return err
	}
	return conv.Remove(ctx, messageID, forEveryone)
}

const liveHelp = "Type a message and press enter. Commands: /older, /edit <id> <text>, /delete <id>, /history, /quit"

// runLive prints the history, subscribes to pushed messages and reads
// commands until /quit, EOF or ctx is done
func runLive(ctx context.Context, title string, conv *messaging.Conversation, me int64) error {
	if err := printConversation(title, conv, me); err != nil {
		return err
	}

	rt, err := connectRealtime(ctx)
	if err != nil {
		formatter.PrintWarning("Live updates unavailable: %v", err)
	} else {
		defer rt.Close()
		unsubscribe := conv.Subscribe(rt, func(m api.Message) {
			fmt.Fprintln(output.Writer(), formatter.MessageLine(m, me, time.Now()))
		})
		defer unsubscribe()
	}

	formatter.PrintInfo(liveHelp)
	for ctx.Err() == nil {
		line, err := prompter.PromptString("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := handleLiveLine(ctx, conv, me, line)
		if err != nil {
			formatter.PrintError("%s", clierrors.FormatError(err))
		}
		if quit {
			return nil
		}
	}
	return nil
}

// handleLiveLine runs one line typed in a live session
func handleLiveLine(ctx context.Context, conv *messaging.Conversation, me int64, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		msg, err := conv.Send(ctx, line)
		if err != nil || msg == nil {
			return false, err
		}
		fmt.Fprintln(output.Writer(), formatter.MessageLine(*msg, me, time.Now()))
		return false, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/history":
		return false, printConversation("History", conv, me)
	case "/older":
		if !conv.HasMore() {
			formatter.PrintInfo("No older messages")
			return false, nil
		}
		if err := conv.LoadOlder(ctx); err != nil {
			return false, err
		}
		return false, printConversation("History", conv, me)
	case "/edit":
		if len(fields) < 3 {
			return false, clierrors.ValidationError("edit", "usage: /edit <id> <text>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return false, clierrors.ValidationError("id", "must be a number")
		}
		content := strings.Join(fields[2:], " ")
		if err := editMessage(ctx, conv, id, content); err != nil {
			return false, err
		}
		formatter.PrintSuccess("Message %d updated", id)
		return false, nil
	case "/delete":
		if len(fields) < 2 {
			return false, clierrors.ValidationError("delete", "usage: /delete <id>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return false, clierrors.ValidationError("id", "must be a number")
		}
		if err := removeMessage(ctx, conv, id, true); err != nil {
			return false, err
		}
		formatter.PrintSuccess("Message %d deleted", id)
		return false, nil
	default:
		formatter.PrintInfo(liveHelp)
		return false, nil
	}
}
