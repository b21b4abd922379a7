package api

import (
	"context"
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// Reaction types accepted by the server
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// Reactions lists every reaction type in display order
var Reactions = []string{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

// IsValidReaction reports whether r is a known reaction type
func IsValidReaction(r string) bool {
	for _, known := range Reactions {
		if r == known {
			return true
		}
	}
	return false
}

// ReactionRequest is the body of the reaction endpoints
type ReactionRequest struct {
	ReactionType string `json:"reaction_type"`
}

// ReactionSummary is the server's view of a post's reactions after a toggle
type ReactionSummary struct {
	UserHasReacted   bool     `json:"user_has_reacted"`
	UserReactionType string   `json:"user_reaction_type"`
	UserReaction     string   `json:"user_reaction"`
	TotalReactions   int      `json:"total_reactions"`
	TopReactions     []string `json:"top_reactions"`
}

// CommentReactionSummary is the server's view of a comment's reactions
type CommentReactionSummary struct {
	CommentReactionType string   `json:"comment_reaction_type"`
	ReactionCount       int      `json:"reaction_count"`
	TopReactions        []string `json:"top_reactions"`
}

// ReactToPost toggles the viewer's reaction on a post
func ReactToPost(ctx context.Context, postID int64, reaction string) (*ReactionSummary, error) {
	logger.Debug("Reacting to post", "post_id", postID, "reaction", reaction)

	var resp envelope[ReactionSummary]
	if err := client.Post(ctx, fmt.Sprintf("/reaction/user_content/%d", postID), ReactionRequest{ReactionType: reaction}, &resp); err != nil {
		return nil, fmt.Errorf("failed to react to post: %w", err)
	}
	return &resp.Data, nil
}

// ReactToComment toggles the viewer's reaction on a comment
func ReactToComment(ctx context.Context, contentID, commentID int64, reaction string) (*CommentReactionSummary, error) {
	logger.Debug("Reacting to comment", "content_id", contentID, "comment_id", commentID, "reaction", reaction)

	var resp envelope[CommentReactionSummary]
	endpoint := fmt.Sprintf("/reaction/comment/%d/%d", contentID, commentID)
	if err := client.Post(ctx, endpoint, ReactionRequest{ReactionType: reaction}, &resp); err != nil {
		return nil, fmt.Errorf("failed to react to comment: %w", err)
	}
	return &resp.Data, nil
}

// Repost shares a post with optional thoughts
func Repost(ctx context.Context, postID int64, thoughts string) error {
	logger.Debug("Reposting", "post_id", postID)

	body := map[string]string{"thoughts": thoughts}
	if err := client.Post(ctx, fmt.Sprintf("/content/repost/%d", postID), body, nil); err != nil {
		return fmt.Errorf("failed to repost: %w", err)
	}
	return nil
}

// UndoRepost removes the viewer's repost of a post
func UndoRepost(ctx context.Context, postID int64) error {
	logger.Debug("Undoing repost", "post_id", postID)

	if err := client.Post(ctx, fmt.Sprintf("/content/undo_repost/%d", postID), map[string]string{}, nil); err != nil {
		return fmt.Errorf("failed to undo repost: %w", err)
	}
	return nil
}
