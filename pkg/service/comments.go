package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/comments"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
)

// DefaultContentType is the content type of user stories
const DefaultContentType = "user_content"

// CommentService handles comment threads
type CommentService struct {
	src         comments.Source
	contentType string
}

// NewCommentService creates a comment service for a content type
func NewCommentService(contentType string) *CommentService {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &CommentService{src: comments.APISource{}, contentType: contentType}
}

func (cs *CommentService) thread(ctx context.Context, contentID int64) (*comments.Store, error) {
	store := comments.NewStore(cs.src, cs.contentType, contentID)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Show prints a content item with its top-level comments. With
// withReplies set the first page of each thread is printed too.
func (cs *CommentService) Show(ctx context.Context, contentID int64, withReplies bool) error {
	store, err := cs.thread(ctx, contentID)
	if err != nil {
		return err
	}

	if withReplies {
		for _, c := range store.Comments() {
			if c.RepliesCount == 0 {
				continue
			}
			if err := store.LoadReplies(ctx, c.ID); err != nil {
				return err
			}
		}
	}

	details := store.Details()
	top := store.Comments()
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print(details.Title, map[string]interface{}{"content": details, "comments": top})
	}

	w := output.Writer()
	now := time.Now()
	formatter.Bold.Fprintln(w, details.Title)
	if details.Location != "" {
		formatter.Faint.Fprintln(w, details.Location)
	}
	if details.Description != "" {
		fmt.Fprintln(w, details.Description)
	}
	fmt.Fprintf(w, "%s by @%s\n\n", formatter.Reactions(details.TopReactions, details.TotalReactions), details.User.Username)

	if len(top) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return nil
	}
	for _, c := range top {
		fmt.Fprintln(w, formatter.CommentLine(c, now))
		for _, r := range store.Replies(c.ID) {
			fmt.Fprintln(w, formatter.CommentLine(r, now))
		}
	}
	return nil
}

// Replies prints up to pages pages of replies to a comment
func (cs *CommentService) Replies(ctx context.Context, contentID, commentID int64, pages int) error {
	store := comments.NewStore(cs.src, cs.contentType, contentID)
	for i := 0; i < pages && store.HasMoreReplies(commentID); i++ {
		if err := store.LoadReplies(ctx, commentID); err != nil {
			return err
		}
	}

	replies := store.Replies(commentID)
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("Replies", replies)
	}
	if len(replies) == 0 {
		formatter.PrintInfo("No replies to comment %d.", commentID)
		return nil
	}
	w := output.Writer()
	now := time.Now()
	for _, r := range replies {
		fmt.Fprintln(w, formatter.CommentLine(r, now))
	}
	if store.HasMoreReplies(commentID) {
		formatter.Faint.Fprintln(w, "More replies available; pass --pages to load them.")
	}
	return nil
}

// Add posts a top-level comment
func (cs *CommentService) Add(ctx context.Context, contentID int64, content string) error {
	return cs.add(ctx, contentID, content, nil)
}

// Reply posts a reply to a comment
func (cs *CommentService) Reply(ctx context.Context, contentID, parentID int64, content string) error {
	return cs.add(ctx, contentID, content, &parentID)
}

func (cs *CommentService) add(ctx context.Context, contentID int64, content string, parentID *int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	store := comments.NewStore(cs.src, cs.contentType, contentID)
	created, err := store.Add(ctx, content, parentID)
	if err != nil {
		return err
	}
	if parentID != nil {
		formatter.PrintSuccess("Replied to comment %d (reply %d)", *parentID, created.ID)
	} else {
		formatter.PrintSuccess("Posted comment %d", created.ID)
	}
	return nil
}

// Edit rewrites one of the viewer's comments
func (cs *CommentService) Edit(ctx context.Context, contentID, commentID int64, content string) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	store := comments.NewStore(cs.src, cs.contentType, contentID)
	if err := store.Edit(ctx, commentID, content); err != nil {
		return err
	}
	formatter.PrintSuccess("Comment %d updated", commentID)
	return nil
}

// React toggles a reaction on a top-level comment
func (cs *CommentService) React(ctx context.Context, contentID, commentID int64, reaction string) error {
	if _, err := currentUser(); err != nil {
		return err
	}
	store, err := cs.thread(ctx, contentID)
	if err != nil {
		return err
	}
	if err := store.React(ctx, commentID, reaction); err != nil {
		return err
	}
	for _, c := range store.Comments() {
		if c.ID == commentID {
			formatter.PrintSuccess("Reactions: %s", formatter.Reactions(c.TopReactions, c.TotalReactions))
		}
	}
	return nil
}
