// Package comments holds the comment thread of one piece of content with
// lazily loaded replies and optimistic comment reactions.
package comments

import (
	"context"
	"strings"
	"sync"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/feed"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/optimistic"
)

// Source is the remote side of a comment thread
type Source interface {
	Details(ctx context.Context, contentType string, contentID int64) (*api.ContentDetails, error)
	Replies(ctx context.Context, commentID int64, page int) (*api.RepliesPage, error)
	Post(ctx context.Context, req api.PostCommentRequest) (*api.Comment, error)
	Update(ctx context.Context, commentID int64, content string) (*api.Comment, error)
	React(ctx context.Context, contentID, commentID int64, reaction string) error
}

// APISource serves comments from the REST API
type APISource struct{}

func (APISource) Details(ctx context.Context, contentType string, contentID int64) (*api.ContentDetails, error) {
	return api.GetContentDetails(ctx, contentType, contentID)
}

func (APISource) Replies(ctx context.Context, commentID int64, page int) (*api.RepliesPage, error) {
	return api.GetReplies(ctx, commentID, page)
}

func (APISource) Post(ctx context.Context, req api.PostCommentRequest) (*api.Comment, error) {
	return api.PostComment(ctx, req)
}

func (APISource) Update(ctx context.Context, commentID int64, content string) (*api.Comment, error) {
	return api.UpdateComment(ctx, commentID, content)
}

func (APISource) React(ctx context.Context, contentID, commentID int64, reaction string) error {
	_, err := api.ReactToComment(ctx, contentID, commentID, reaction)
	return err
}

type thread struct {
	replies []api.Comment
	page    int
	hasMore bool
}

// Store is one content item and its comments
type Store struct {
	src         Source
	contentType string
	contentID   int64

	mu       sync.Mutex
	details  *api.ContentDetails
	comments []api.Comment
	threads  map[int64]*thread
}

// NewStore creates an empty thread for a content item
func NewStore(src Source, contentType string, contentID int64) *Store {
	return &Store{
		src:         src,
		contentType: contentType,
		contentID:   contentID,
		threads:     make(map[int64]*thread),
	}
}

// Load fetches the content and its top-level comments. Loaded replies are
// discarded.
func (s *Store) Load(ctx context.Context) error {
	details, err := s.src.Details(ctx, s.contentType, s.contentID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = details.Comments
	details.Comments = nil
	s.details = details
	s.threads = make(map[int64]*thread)
	return nil
}

// Details returns the content without its comments, or nil before Load
func (s *Store) Details() *api.ContentDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.details == nil {
		return nil
	}
	d := *s.details
	return &d
}

// Comments returns a copy of the top-level comments
func (s *Store) Comments() []api.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.comments)
}

// Replies returns the replies loaded so far for a comment
func (s *Store) Replies(commentID int64) []api.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.threads[commentID]; ok {
		return cloneAll(t.replies)
	}
	return nil
}

// HasMoreReplies reports whether another page of replies may exist
func (s *Store) HasMoreReplies(commentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[commentID]
	return !ok || t.hasMore
}

// LoadReplies fetches the next page of replies to a comment
func (s *Store) LoadReplies(ctx context.Context, commentID int64) error {
	s.mu.Lock()
	next := 1
	if t, ok := s.threads[commentID]; ok {
		if !t.hasMore {
			s.mu.Unlock()
			return nil
		}
		next = t.page + 1
	}
	s.mu.Unlock()

	page, err := s.src.Replies(ctx, commentID, next)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[commentID]
	if !ok {
		t = &thread{}
		s.threads[commentID] = t
	}
	t.replies = append(t.replies, page.Replies...)
	t.page = next
	t.hasMore = page.Pagination.HasNext
	return nil
}

// Add posts a comment, or a reply when parentID is set. Comments go to the
// top of the list and replies to the end of their thread.
func (s *Store) Add(ctx context.Context, content string, parentID *int64) (*api.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, clierrors.ValidationError("content", "comment cannot be empty")
	}

	created, err := s.src.Post(ctx, api.PostCommentRequest{
		ContentID:   s.contentID,
		ContentType: s.contentType,
		Content:     content,
		ParentID:    parentID,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if parentID == nil {
		s.comments = append([]api.Comment{created.Clone()}, s.comments...)
		return created, nil
	}

	for i := range s.comments {
		if s.comments[i].ID == *parentID {
			s.comments[i].RepliesCount++
		}
	}
	if t, ok := s.threads[*parentID]; ok {
		t.replies = append(t.replies, created.Clone())
	}
	return created, nil
}

// Edit rewrites a comment or reply once the server accepts it
func (s *Store) Edit(ctx context.Context, commentID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return clierrors.ValidationError("content", "comment cannot be empty")
	}

	if _, err := s.src.Update(ctx, commentID, content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.each(func(c *api.Comment) {
		if c.ID == commentID {
			c.Content = content
		}
	})
	return nil
}

// React toggles the viewer's reaction on a comment or reply. The change is
// visible immediately and reverted if the server rejects it.
func (s *Store) React(ctx context.Context, commentID int64, reaction string) error {
	if !api.IsValidReaction(reaction) {
		return clierrors.ValidationError("reaction", "must be one of "+strings.Join(api.Reactions, ", "))
	}

	return optimistic.Do(ctx, optimistic.Op[api.Comment]{
		Kind:  "comment_reaction",
		Load:  func() (api.Comment, bool) { return s.get(commentID) },
		Store: s.put,
		Apply: func(c api.Comment) api.Comment {
			next := feed.ApplyReaction(feed.ReactionState{
				UserReaction: c.UserReaction,
				Total:        c.TotalReactions,
				Top:          c.TopReactions,
			}, reaction)
			c = c.Clone()
			c.UserReaction = next.UserReaction
			c.CommentReactionType = next.UserReaction
			c.TotalReactions = next.Total
			c.TopReactions = next.Top
			return c
		},
		Commit: func(ctx context.Context) error {
			return s.src.React(ctx, s.contentID, commentID, reaction)
		},
	})
}

func (s *Store) get(commentID int64) (api.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *api.Comment
	s.each(func(c *api.Comment) {
		if found == nil && c.ID == commentID {
			found = c
		}
	})
	if found == nil {
		return api.Comment{}, false
	}
	return found.Clone(), true
}

func (s *Store) put(comment api.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.each(func(c *api.Comment) {
		if c.ID == comment.ID {
			*c = comment.Clone()
		}
	})
}

// each visits every held comment and reply. Callers hold s.mu.
func (s *Store) each(fn func(*api.Comment)) {
	for i := range s.comments {
		fn(&s.comments[i])
	}
	for _, t := range s.threads {
		for i := range t.replies {
			fn(&t.replies[i])
		}
	}
}

func cloneAll(in []api.Comment) []api.Comment {
	if in == nil {
		return nil
	}
	out := make([]api.Comment, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
