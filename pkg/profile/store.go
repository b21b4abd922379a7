// Package profile holds a user's profile page with optimistic follow
// toggling.
package profile

import (
	"context"
	"sync"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/optimistic"
)

// Source is the remote side of a profile page
type Source interface {
	Profile(ctx context.Context, username string) (*api.Profile, error)
	Posts(ctx context.Context, username string, page int) ([]api.Post, error)
	Reposts(ctx context.Context, username string, page int) ([]api.Post, error)
	Follow(ctx context.Context, userID int64) error
	Unfollow(ctx context.Context, userID int64) error
}

// APISource serves profiles from the REST API
type APISource struct{}

func (APISource) Profile(ctx context.Context, username string) (*api.Profile, error) {
	return api.GetProfile(ctx, username)
}

func (APISource) Posts(ctx context.Context, username string, page int) ([]api.Post, error) {
	return api.GetProfilePosts(ctx, username, page)
}

func (APISource) Reposts(ctx context.Context, username string, page int) ([]api.Post, error) {
	return api.GetProfileReposts(ctx, username, page)
}

func (APISource) Follow(ctx context.Context, userID int64) error {
	return api.Follow(ctx, userID)
}

func (APISource) Unfollow(ctx context.Context, userID int64) error {
	return api.Unfollow(ctx, userID)
}

// Store is one user's profile page
type Store struct {
	src      Source
	username string

	mu      sync.Mutex
	profile *api.Profile
	posts   []api.Post
	reposts []api.Post
}

// NewStore creates an empty page for username
func NewStore(src Source, username string) *Store {
	return &Store{src: src, username: username}
}

// Load fetches the profile and the first page of posts and reposts
func (s *Store) Load(ctx context.Context) error {
	p, err := s.src.Profile(ctx, s.username)
	if err != nil {
		return err
	}
	posts, err := s.src.Posts(ctx, s.username, 1)
	if err != nil {
		return err
	}
	reposts, err := s.src.Reposts(ctx, s.username, 1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.posts = posts
	s.reposts = reposts
	return nil
}

// Profile returns a copy of the profile, or nil before Load
func (s *Store) Profile() *api.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Posts returns the loaded posts
func (s *Store) Posts() []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Post(nil), s.posts...)
}

// Reposts returns the loaded reposts
func (s *Store) Reposts() []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Post(nil), s.reposts...)
}

// ToggleFollow follows or unfollows the profile's user. is_following and
// the follower count change at once and are restored if the server
// rejects the change.
func (s *Store) ToggleFollow(ctx context.Context) error {
	current, ok := s.load()
	if !ok {
		return optimistic.ErrNotFound
	}
	following := current.IsFollowing
	userID := current.UserData.ID

	return optimistic.Do(ctx, optimistic.Op[api.Profile]{
		Kind:  "follow",
		Load:  s.load,
		Store: s.store,
		Apply: func(p api.Profile) api.Profile {
			p.IsFollowing = !following
			if following {
				p.Relationships.Followers--
				if p.Relationships.Followers < 0 {
					p.Relationships.Followers = 0
				}
			} else {
				p.Relationships.Followers++
			}
			return p
		},
		Commit: func(ctx context.Context) error {
			if following {
				return s.src.Unfollow(ctx, userID)
			}
			return s.src.Follow(ctx, userID)
		},
	})
}

func (s *Store) load() (api.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return api.Profile{}, false
	}
	return *s.profile, true
}

func (s *Store) store(p api.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}
