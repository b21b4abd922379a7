// Package feed holds the paginated, location-filtered post feed with
// optimistic reactions and reposts.
package feed

import (
	"context"
	"strings"
	"sync"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/optimistic"
)

// Source is the remote side of the feed
type Source interface {
	Fetch(ctx context.Context, page int, location string) ([]api.Post, error)
	React(ctx context.Context, postID int64, reaction string) error
	Repost(ctx context.Context, postID int64) error
	UndoRepost(ctx context.Context, postID int64) error
}

// APISource serves the feed from the REST API
type APISource struct{}

func (APISource) Fetch(ctx context.Context, page int, location string) ([]api.Post, error) {
	return api.GetCombinedFeed(ctx, page, location)
}

func (APISource) React(ctx context.Context, postID int64, reaction string) error {
	_, err := api.ReactToPost(ctx, postID, reaction)
	return err
}

func (APISource) Repost(ctx context.Context, postID int64) error {
	return api.Repost(ctx, postID, "")
}

func (APISource) UndoRepost(ctx context.Context, postID int64) error {
	return api.UndoRepost(ctx, postID)
}

// Options configures a Store
type Options struct {
	// Location is the initial filter; empty means the whole city
	Location string
	// Pinned is a just-posted story kept at the top of the list
	Pinned *api.Post
	// RememberLocation is called after every location change
	RememberLocation func(location string) error
}

// Store is the feed state. It is safe for concurrent use.
type Store struct {
	src Source
	opt Options

	mu       sync.Mutex
	posts    []api.Post
	page     int
	hasMore  bool
	loading  bool
	location string
	pinned   *api.Post
}

// NewStore creates an empty feed
func NewStore(src Source, opt Options) *Store {
	location := strings.TrimSpace(opt.Location)
	if location == "" {
		location = api.DefaultLocation
	}

	s := &Store{
		src:      src,
		opt:      opt,
		page:     1,
		hasMore:  true,
		location: location,
	}
	if opt.Pinned != nil {
		pinned := opt.Pinned.Clone()
		pinned.IsNewlyPosted = true
		s.pinned = &pinned
	}
	return s
}

// Posts returns a copy of the current list
func (s *Store) Posts() []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.Clone()
	}
	return out
}

// Location returns the active location filter
func (s *Store) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// HasMore reports whether another page may exist
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Page returns the last page loaded
func (s *Store) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Load fetches the first page for the current location
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	location := s.location
	s.loading = true
	s.mu.Unlock()

	fetched, err := s.fetch(ctx, 1, location)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.posts = nil
		return err
	}

	s.page = 1
	s.hasMore = len(fetched) > 0
	s.posts = s.withPinned(fetched, s.pinned != nil)
	return nil
}

// LoadMore appends the next page. An empty page ends pagination.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	next := s.page + 1
	location := s.location
	s.mu.Unlock()

	fetched, err := s.fetch(ctx, next, location)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		return err
	}
	if location != s.location {
		// The filter changed while this page was in flight
		return nil
	}
	if len(fetched) == 0 {
		s.hasMore = false
		return nil
	}

	pinnedShown := s.pinned != nil && len(s.posts) > 0 && s.posts[0].ID == s.pinned.ID
	s.posts = s.withPinned(append(s.posts, fetched...), pinnedShown)
	s.page = next
	return nil
}

// ChangeLocation switches the filter and reloads page one. The pinned post
// stays on top when it belongs to the new location. On failure the
// previous list is kept.
func (s *Store) ChangeLocation(ctx context.Context, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		location = api.DefaultLocation
	}

	s.mu.Lock()
	if location == s.location {
		s.mu.Unlock()
		return nil
	}
	s.location = location
	s.page = 1
	s.hasMore = true
	previous := len(s.posts)
	pinned := s.pinned
	s.mu.Unlock()

	if s.opt.RememberLocation != nil {
		if err := s.opt.RememberLocation(location); err != nil {
			logger.Warn("Failed to remember feed location", "location", location, "error", err)
		}
	}

	matched := pinned != nil && LocationMatches(pinned.Location, location)
	fetched, err := s.fetch(ctx, 1, location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if location != s.location {
		return nil
	}

	if err != nil {
		logger.Warn("Failed to load feed for location", "location", location, "error", err)
		if previous == 0 {
			s.posts = s.withPinned(nil, matched)
		}
		return err
	}

	s.posts = s.withPinned(fetched, matched)
	s.hasMore = len(fetched) > 0
	return nil
}

// LocationMatches reports whether a post location belongs to the selected
// one. Either side may carry a ", Seattle, WA" style suffix.
func LocationMatches(postLocation, selected string) bool {
	post := strings.ToLower(strings.TrimSpace(postLocation))
	sel := strings.ToLower(strings.TrimSpace(selected))

	postHead, selHead := headBeforeComma(post), headBeforeComma(sel)
	if postHead == "" || selHead == "" {
		return false
	}
	if post == sel {
		return true
	}
	return strings.HasPrefix(post, selHead) || strings.HasPrefix(sel, postHead)
}

func headBeforeComma(s string) string {
	head, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(head)
}

// React toggles the viewer's reaction on a post. The change is visible
// immediately and reverted if the server rejects it.
func (s *Store) React(ctx context.Context, postID int64, reaction string) error {
	if !api.IsValidReaction(reaction) {
		return clierrors.ValidationError("reaction", "must be one of "+strings.Join(api.Reactions, ", "))
	}

	return optimistic.Do(ctx, optimistic.Op[api.Post]{
		Kind:  "reaction",
		Load:  func() (api.Post, bool) { return s.get(postID) },
		Store: s.put,
		Apply: func(p api.Post) api.Post {
			next := ApplyReaction(ReactionState{
				UserReaction: p.UserReaction,
				Total:        p.TotalReactions,
				Top:          p.TopReactions,
			}, reaction)
			p = p.Clone()
			p.UserReaction = next.UserReaction
			p.UserHasReacted = next.UserReaction != ""
			p.UserReactionType = next.UserReaction
			p.TotalReactions = next.Total
			p.TopReactions = next.Top
			return p
		},
		Commit: func(ctx context.Context) error {
			return s.src.React(ctx, postID, reaction)
		},
	})
}

// Repost toggles the viewer's repost of a post with the same rollback rule
func (s *Store) Repost(ctx context.Context, postID int64) error {
	current, ok := s.get(postID)
	if !ok {
		return optimistic.ErrNotFound
	}
	undoing := current.HasUserReposted

	return optimistic.Do(ctx, optimistic.Op[api.Post]{
		Kind:  "repost",
		Load:  func() (api.Post, bool) { return s.get(postID) },
		Store: s.put,
		Apply: func(p api.Post) api.Post {
			p.HasUserReposted = !undoing
			return p
		},
		Commit: func(ctx context.Context) error {
			if undoing {
				return s.src.UndoRepost(ctx, postID)
			}
			return s.src.Repost(ctx, postID)
		},
	})
}

func (s *Store) get(postID int64) (api.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return p.Clone(), true
		}
	}
	return api.Post{}, false
}

func (s *Store) put(post api.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == post.ID {
			s.posts[i] = post.Clone()
		}
	}
	if s.pinned != nil && s.pinned.ID == post.ID {
		pinned := post.Clone()
		s.pinned = &pinned
	}
}

// fetch loads a page and drops the pinned post from it
func (s *Store) fetch(ctx context.Context, page int, location string) ([]api.Post, error) {
	posts, err := s.src.Fetch(ctx, page, location)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pinned := s.pinned
	s.mu.Unlock()
	if pinned == nil {
		return posts, nil
	}

	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != pinned.ID {
			out = append(out, p)
		}
	}
	return out, nil
}

// withPinned returns posts with the pinned post at index 0 when include is
// set. Callers hold s.mu.
func (s *Store) withPinned(posts []api.Post, include bool) []api.Post {
	out := make([]api.Post, 0, len(posts)+1)
	if include && s.pinned != nil {
		out = append(out, s.pinned.Clone())
	}
	for _, p := range posts {
		if s.pinned != nil && p.ID == s.pinned.ID {
			continue
		}
		out = append(out, p)
	}
	return out
}
