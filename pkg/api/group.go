package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// Group roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

// Group is a group chat
type Group struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	CreatedBy int64         `json:"created_by"`
	CreatedAt string        `json:"created_at"`
	Members   []GroupMember `json:"members,omitempty"`
	Messages  []Message     `json:"messages,omitempty"`
}

// GroupMember is a membership row
type GroupMember struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	GroupChatID int64  `json:"group_chat_id"`
	JoinedAt    string `json:"joined_at,omitempty"`
	Role        string `json:"role,omitempty"`
}

// GroupMemberProfile is a member with their profile
type GroupMemberProfile struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Role              string `json:"role"`
}

// GroupMembers is the member listing of a group
type GroupMembers struct {
	GroupID      int64                `json:"group_id"`
	TotalMembers int                  `json:"total_members"`
	Members      []GroupMemberProfile `json:"members"`
}

// LeaveResult reports whether leaving also deleted the group
type LeaveResult struct {
	GroupID      int64 `json:"group_id"`
	GroupDeleted bool  `json:"group_deleted"`
}

type groupRef struct {
	GroupChatID int64 `json:"group_chat_id"`
}

type groupMemberRef struct {
	GroupChatID int64 `json:"group_chat_id"`
	UserID      int64 `json:"user_id"`
}

// CreateGroup creates a group chat owned by the viewer
func CreateGroup(ctx context.Context, name string) (*Group, error) {
	logger.Debug("Creating group", "name", name)

	var resp envelope[struct {
		Group Group `json:"group"`
	}]
	if err := client.Post(ctx, "/group/create", map[string]string{"name": name}, &resp); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &resp.Data.Group, nil
}

// ListGroups retrieves one page of the viewer's groups
func ListGroups(ctx context.Context, page, limit int) ([]Group, error) {
	logger.Debug("Fetching groups", "page", page, "limit", limit)

	var resp envelope[struct {
		Groups []Group `json:"groups"`
	}]
	if err := client.Get(ctx, fmt.Sprintf("/group/list?page=%d&limit=%d", page, limit), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}
	return resp.Data.Groups, nil
}

// GetGroupMessages retrieves one page of group messages, newest first
func GetGroupMessages(ctx context.Context, groupID int64, page, limit int) ([]Message, error) {
	logger.Debug("Fetching group messages", "group_id", groupID, "page", page)

	var resp envelope[struct {
		Messages []Message `json:"messages"`
	}]
	endpoint := fmt.Sprintf("/group/messages/%d?page=%d&limit=%d", groupID, page, limit)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch group messages: %w", err)
	}
	return resp.Data.Messages, nil
}

// SendGroupMessage posts a message to a group
func SendGroupMessage(ctx context.Context, groupID int64, content string) (*Message, error) {
	logger.Debug("Sending group message", "group_id", groupID)

	body := map[string]interface{}{"group_chat_id": groupID, "content": content}
	var resp envelope[struct {
		Message Message `json:"message"`
	}]
	if err := client.Post(ctx, "/group/message/send", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to send group message: %w", err)
	}
	return &resp.Data.Message, nil
}

// EditGroupMessage replaces a group message's content
func EditGroupMessage(ctx context.Context, messageID int64, content string) error {
	logger.Debug("Editing group message", "message_id", messageID)

	body := map[string]string{"content": content}
	if err := client.Put(ctx, fmt.Sprintf("/group/group-chat/edit-message/%d", messageID), body, nil); err != nil {
		return fmt.Errorf("failed to edit group message: %w", err)
	}
	return nil
}

// DeleteGroupMessage deletes a group message for the viewer or for everyone
func DeleteGroupMessage(ctx context.Context, messageID int64, deleteForAll bool) error {
	logger.Debug("Deleting group message", "message_id", messageID, "for_all", deleteForAll)

	body := map[string]interface{}{"message_id": messageID, "delete_for_all": deleteForAll}
	if err := client.Delete(ctx, "/group/message/delete", body, nil); err != nil {
		return fmt.Errorf("failed to delete group message: %w", err)
	}
	return nil
}

// AddGroupMember adds a user to a group
func AddGroupMember(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	logger.Debug("Adding group member", "group_id", groupID, "user_id", userID)

	var resp envelope[struct {
		Member GroupMember `json:"member"`
	}]
	if err := client.Post(ctx, "/group/member/add", groupMemberRef{GroupChatID: groupID, UserID: userID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return &resp.Data.Member, nil
}

// RemoveGroupMember removes a user from a group and returns the removed id
func RemoveGroupMember(ctx context.Context, groupID, userID int64) (int64, error) {
	logger.Debug("Removing group member", "group_id", groupID, "user_id", userID)

	var resp envelope[struct {
		RemovedUserID int64 `json:"removed_user_id"`
	}]
	if err := client.Delete(ctx, "/group/member/remove", groupMemberRef{GroupChatID: groupID, UserID: userID}, &resp); err != nil {
		return 0, fmt.Errorf("failed to remove member: %w", err)
	}
	return resp.Data.RemovedUserID, nil
}

// JoinGroup adds the viewer to a group
func JoinGroup(ctx context.Context, groupID int64) error {
	logger.Debug("Joining group", "group_id", groupID)

	if err := client.Post(ctx, "/group/group/join", groupRef{GroupChatID: groupID}, nil); err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}
	return nil
}

// LeaveGroup removes the viewer from a group. An owner leaving must confirm
// deletion of the group.
func LeaveGroup(ctx context.Context, groupID int64, confirmDelete bool) (*LeaveResult, error) {
	logger.Debug("Leaving group", "group_id", groupID, "confirm_delete", confirmDelete)

	body := map[string]interface{}{
		"group_chat_id":             groupID,
		"delete_group_confirmation": confirmDelete,
	}
	var resp envelope[LeaveResult]
	if err := client.Post(ctx, "/group/group/leave", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to leave group: %w", err)
	}
	return &resp.Data, nil
}

// AssignGroupRole changes a member's role
func AssignGroupRole(ctx context.Context, groupID, userID int64, role string) error {
	logger.Debug("Assigning group role", "group_id", groupID, "user_id", userID, "role", role)

	switch role {
	case RoleMember, RoleAdmin, RoleOwner:
	default:
		return fmt.Errorf("invalid role %q", role)
	}

	body := map[string]interface{}{"group_chat_id": groupID, "user_id": userID, "role": role}
	if err := client.Patch(ctx, "/group/admin/assign", body, nil); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// DeleteGroup deletes a group the viewer owns
func DeleteGroup(ctx context.Context, groupID int64) error {
	logger.Debug("Deleting group", "group_id", groupID)

	if err := client.Delete(ctx, "/group/delete", groupRef{GroupChatID: groupID}, nil); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// GetGroupMembers lists a group's members with their roles
func GetGroupMembers(ctx context.Context, groupID int64) (*GroupMembers, error) {
	logger.Debug("Fetching group members", "group_id", groupID)

	var resp envelope[GroupMembers]
	endpoint := "/group/group/members?group_chat_id=" + strconv.FormatInt(groupID, 10)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch group members: %w", err)
	}
	return &resp.Data, nil
}

// GetGroupMemberCount returns the number of members in a group
func GetGroupMemberCount(ctx context.Context, groupID int64) (int, error) {
	logger.Debug("Fetching group member count", "group_id", groupID)

	var resp envelope[struct {
		GroupID      int64 `json:"group_id"`
		TotalMembers int   `json:"total_members"`
	}]
	endpoint := "/group/group/member-count?group_chat_id=" + strconv.FormatInt(groupID, 10)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch member count: %w", err)
	}
	return resp.Data.TotalMembers, nil
}

// GenerateInviteLink creates a shareable invite link for a group
func GenerateInviteLink(ctx context.Context, groupID int64) (string, error) {
	logger.Debug("Generating invite link", "group_id", groupID)

	var resp envelope[struct {
		InviteLink string `json:"invite_link"`
	}]
	if err := client.Post(ctx, "/group/invite/generate", groupRef{GroupChatID: groupID}, &resp); err != nil {
		return "", fmt.Errorf("failed to generate invite link: %w", err)
	}
	return resp.Data.InviteLink, nil
}

// JoinByInvite joins the group an invite token points to
func JoinByInvite(ctx context.Context, token string) error {
	logger.Debug("Joining group by invite")

	if err := client.Get(ctx, "/group/invite/join/"+url.PathEscape(token), nil); err != nil {
		return fmt.Errorf("failed to join by invite: %w", err)
	}
	return nil
}
