package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/messaging"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
)

// Group roles the server accepts
var groupRoles = map[string]bool{"admin": true, "member": true}

// GroupService handles group chats
type GroupService struct{}

// NewGroupService creates a new group service
func NewGroupService() *GroupService {
	return &GroupService{}
}

// Create creates a group and queues it for 'group live'
func (gs *GroupService) Create(ctx context.Context, name string) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return clierrors.ValidationError("name", "is required")
	}

	group, err := api.CreateGroup(ctx, name)
	if err != nil {
		return err
	}

	err = handoff.Update(func(in *handoff.Intent) {
		in.PendingChat = &handoff.PendingChat{GroupID: group.ID, Name: group.Name}
	})
	if err != nil {
		logger.Warn("Failed to save pending chat", "error", err)
	}

	formatter.PrintSuccess("Created group %q (id %d)", group.Name, group.ID)
	return nil
}

// List prints the viewer's groups
func (gs *GroupService) List(ctx context.Context) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	list := messaging.NewGroupList()
	if err := list.Refresh(ctx); err != nil {
		return err
	}
	groups := list.Items()
	if len(groups) == 0 {
		formatter.PrintInfo("You are not in any groups.")
		return nil
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name, strconv.Itoa(len(g.Members))})
	}
	return output.PrintList("Groups", groups, []string{"ID", "NAME", "MEMBERS"}, rows)
}

// Members prints a group's members and their roles
func (gs *GroupService) Members(ctx context.Context, groupID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	members, err := api.GetGroupMembers(ctx, groupID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(members.Members))
	for _, m := range members.Members {
		name := strings.TrimSpace(m.FirstName + " " + m.LastName)
		rows = append(rows, []string{strconv.FormatInt(m.ID, 10), "@" + m.Username, name, m.Role})
	}
	title := fmt.Sprintf("Group %d (%d member%s)", groupID, members.TotalMembers, pluralize(members.TotalMembers))
	return output.PrintList(title, members.Members, []string{"ID", "USERNAME", "NAME", "ROLE"}, rows)
}

// Count prints the number of members in a group
func (gs *GroupService) Count(ctx context.Context, groupID int64) error {
	count, err := api.GetGroupMemberCount(ctx, groupID)
	if err != nil {
		return err
	}
	return output.PrintRecord("Group members", map[string]interface{}{
		"group_id":      groupID,
		"total_members": count,
	})
}

// AddMember adds a user to a group
func (gs *GroupService) AddMember(ctx context.Context, groupID, userID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	member, err := api.AddGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("Added user %d to group %d", member.UserID, groupID)
	return nil
}

// RemoveMember removes a user from a group
func (gs *GroupService) RemoveMember(ctx context.Context, groupID, userID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	removed, err := api.RemoveGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("Removed user %d from group %d", removed, groupID)
	return nil
}

// Join joins a group by id
func (gs *GroupService) Join(ctx context.Context, groupID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	if err := api.JoinGroup(ctx, groupID); err != nil {
		return err
	}
	formatter.PrintSuccess("Joined group %d", groupID)
	return nil
}

// Leave leaves a group. When the viewer is the last admin the server
// deletes the group, so that needs confirmation first.
func (gs *GroupService) Leave(ctx context.Context, groupID int64, force bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	confirmDelete := force
	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Leave group %d? If you are the last admin it will be deleted.", groupID))
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
		confirmDelete = true
	}

	res, err := api.LeaveGroup(ctx, groupID, confirmDelete)
	if err != nil {
		return err
	}
	if res.GroupDeleted {
		formatter.PrintSuccess("Left group %d; it was deleted", groupID)
	} else {
		formatter.PrintSuccess("Left group %d", groupID)
	}
	return nil
}

// AssignRole changes a member's role
func (gs *GroupService) AssignRole(ctx context.Context, groupID, userID int64, role string) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !groupRoles[role] {
		return clierrors.ValidationError("role", "must be admin or member")
	}
	if err := api.AssignGroupRole(ctx, groupID, userID, role); err != nil {
		return err
	}
	formatter.PrintSuccess("User %d is now %s of group %d", userID, role, groupID)
	return nil
}

// Delete deletes a group after confirmation
func (gs *GroupService) Delete(ctx context.Context, groupID int64, force bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete group %d for everyone?", groupID))
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
	}
	if err := api.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	formatter.PrintSuccess("Group %d deleted", groupID)
	return nil
}

// Invite prints a shareable invite link
func (gs *GroupService) Invite(ctx context.Context, groupID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	link, err := api.GenerateInviteLink(ctx, groupID)
	if err != nil {
		return err
	}
	return output.PrintRecord("Invite", map[string]interface{}{"group_id": groupID, "invite_link": link})
}

// JoinByInvite joins through an invite link or its token
func (gs *GroupService) JoinByInvite(ctx context.Context, invite string) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	token := inviteToken(invite)
	if token == "" {
		return clierrors.ValidationError("invite", "is required")
	}
	if err := api.JoinByInvite(ctx, token); err != nil {
		return err
	}
	formatter.PrintSuccess("Joined the group")
	return nil
}

// inviteToken takes the last path segment of an invite link
func inviteToken(invite string) string {
	invite = strings.TrimRight(strings.TrimSpace(invite), "/")
	if i := strings.LastIndexByte(invite, '/'); i >= 0 {
		invite = invite[i+1:]
	}
	if i := strings.IndexAny(invite, "?#"); i >= 0 {
		invite = invite[:i]
	}
	return invite
}

func (gs *GroupService) conversation(ctx context.Context, groupID int64, pages int) (*messaging.Conversation, int64, error) {
	me, err := currentUser()
	if err != nil {
		return nil, 0, err
	}
	conv := messaging.NewConversation(messaging.GroupTransport{GroupID: groupID}, me.UserID)
	if err := loadPages(ctx, conv, pages); err != nil {
		return nil, 0, err
	}
	return conv, me.UserID, nil
}

// Messages prints the last pages of a group's messages
func (gs *GroupService) Messages(ctx context.Context, groupID int64, pages int) error {
	conv, me, err := gs.conversation(ctx, groupID, pages)
	if err != nil {
		return err
	}
	return printConversation(fmt.Sprintf("Group %d", groupID), conv, me)
}

// Send posts a message to a group
func (gs *GroupService) Send(ctx context.Context, groupID int64, content string) error {
	me, err := currentUser()
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return clierrors.ValidationError("message", "cannot be empty")
	}
	conv := messaging.NewConversation(messaging.GroupTransport{GroupID: groupID}, me.UserID)
	msg, err := conv.Send(ctx, content)
	if err != nil {
		return err
	}
	formatter.PrintSuccess("Sent message %d", msg.ID)
	return nil
}

// EditMessage changes one of the viewer's recent group messages
func (gs *GroupService) EditMessage(ctx context.Context, groupID, messageID int64, content string) error {
	conv, _, err := gs.conversation(ctx, groupID, 1)
	if err != nil {
		return err
	}
	if err := editMessage(ctx, conv, messageID, content); err != nil {
		return err
	}
	formatter.PrintSuccess("Message %d updated", messageID)
	return nil
}

// DeleteMessage removes one of the viewer's recent group messages
func (gs *GroupService) DeleteMessage(ctx context.Context, groupID, messageID int64, forEveryone bool) error {
	conv, _, err := gs.conversation(ctx, groupID, 1)
	if err != nil {
		return err
	}
	if err := removeMessage(ctx, conv, messageID, forEveryone); err != nil {
		return err
	}
	formatter.PrintSuccess("Message %d deleted", messageID)
	return nil
}

// Live opens an interactive session on a group. A zero groupID takes the
// group queued by 'group create'.
func (gs *GroupService) Live(ctx context.Context, groupID int64) error {
	if groupID == 0 {
		pending, err := handoff.ConsumePendingChat()
		if err != nil {
			return err
		}
		switch {
		case pending != nil && pending.GroupID != 0:
			groupID = pending.GroupID
		case pending != nil && pending.ChatID != 0:
			return NewChatService().Live(ctx, pending.ChatID)
		default:
			return clierrors.ValidationError("group", "no group given and none pending").
				WithSuggestion("Pass a group id or run 'pulse group create <name>' first.")
		}
	}

	conv, me, err := gs.conversation(ctx, groupID, 1)
	if err != nil {
		return err
	}
	return runLive(ctx, fmt.Sprintf("Group %d", groupID), conv, me)
}
