package api

import (
	"context"
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// Comment is a top-level comment or a reply
type Comment struct {
	ID           int64        `json:"id"`
	Content      string       `json:"content"`
	UserID       int64        `json:"user_id"`
	CreatedAt    string       `json:"created_at"`
	ParentID     *int64       `json:"parent_id,omitempty"`
	User         UserSummary  `json:"user"`
	RepliesCount int          `json:"replies_count"`
	RepliedTo    *UserSummary `json:"replied_to,omitempty"`
	TopReactions []string     `json:"top_reactions"`

	UserReaction        string `json:"user_reaction,omitempty"`
	CommentReactionType string `json:"comment_reaction_type,omitempty"`
	ReactionCount       *int   `json:"reaction_count,omitempty"`
	RawTotalReactions   *int   `json:"total_reactions,omitempty"`

	// TotalReactions is derived by Decorate
	TotalReactions int `json:"-"`
}

// Decorate normalizes the two reaction shapes the server returns
func (c *Comment) Decorate() {
	if c.CommentReactionType != "" {
		c.UserReaction = c.CommentReactionType
	}

	switch {
	case c.ReactionCount != nil:
		c.TotalReactions = *c.ReactionCount
	case c.RawTotalReactions != nil:
		c.TotalReactions = *c.RawTotalReactions
	default:
		c.TotalReactions = 0
	}

	if c.TopReactions == nil {
		c.TopReactions = []string{}
	}
}

// Clone returns a copy that shares no slices with c
func (c Comment) Clone() Comment {
	c.TopReactions = append([]string{}, c.TopReactions...)
	return c
}

// PostCommentRequest is the body of POST /comments/post_comment
type PostCommentRequest struct {
	ContentID   int64  `json:"content_id"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
	ParentID    *int64 `json:"parent_id"`
}

// PostComment adds a comment, or a reply when parentID is set
func PostComment(ctx context.Context, req PostCommentRequest) (*Comment, error) {
	logger.Debug("Posting comment", "content_id", req.ContentID, "parent_id", req.ParentID)

	var resp envelope[Comment]
	if err := client.Post(ctx, "/comments/post_comment", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}

	resp.Data.Decorate()
	return &resp.Data, nil
}

// UpdateComment rewrites a comment's content
func UpdateComment(ctx context.Context, commentID int64, content string) (*Comment, error) {
	logger.Debug("Updating comment", "comment_id", commentID)

	body := map[string]interface{}{
		"comment_id": commentID,
		"content":    content,
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Comment
			Nested *Comment `json:"comment"`
		} `json:"data"`
	}
	if err := client.Put(ctx, "/comments/update_comment", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	updated := resp.Data.Comment
	if resp.Data.Nested != nil {
		updated = *resp.Data.Nested
	}
	updated.Decorate()
	return &updated, nil
}

// RepliesPage is one page of replies to a comment
type RepliesPage struct {
	Replies    []Comment
	Pagination Pagination
}

// GetReplies retrieves one page of replies, ten per page
func GetReplies(ctx context.Context, commentID int64, page int) (*RepliesPage, error) {
	logger.Debug("Fetching replies", "comment_id", commentID, "page", page)

	var resp struct {
		Success    bool       `json:"success"`
		Data       []Comment  `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	endpoint := fmt.Sprintf("/comments/%d/replies?page=%d&per_page=10", commentID, page)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}

	for i := range resp.Data {
		resp.Data[i].Decorate()
	}
	return &RepliesPage{Replies: resp.Data, Pagination: resp.Pagination}, nil
}
