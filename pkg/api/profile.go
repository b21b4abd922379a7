package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// ProfilePageSize is the page size of profile post and repost listings
const ProfilePageSize = 20

// Relationships are a profile's follow counts
type Relationships struct {
	Followers  int `json:"followers"`
	Following  int `json:"following"`
	TotalPosts int `json:"total_posts"`
}

// ProfileUser is the user block of a profile
type ProfileUser struct {
	ID                int64   `json:"id"`
	Username          string  `json:"username"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Email             string  `json:"email"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	ShowHomeLocation  bool    `json:"show_home_location"`
}

// Profile is a user's public profile as seen by the viewer
type Profile struct {
	IsFollowing   bool          `json:"is_following"`
	Relationships Relationships `json:"relationships"`
	UserData      ProfileUser   `json:"user_data"`
}

// GetProfile retrieves a user's profile
func GetProfile(ctx context.Context, username string) (*Profile, error) {
	logger.Debug("Fetching profile", "username", username)

	var resp envelope[Profile]
	if err := client.Get(ctx, "/profile/"+url.PathEscape(username), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &resp.Data, nil
}

// GetProfilePosts retrieves one page of a user's posts
func GetProfilePosts(ctx context.Context, username string, page int) ([]Post, error) {
	logger.Debug("Fetching profile posts", "username", username, "page", page)

	var resp envelope[struct {
		Posts []Post `json:"posts"`
	}]
	endpoint := fmt.Sprintf("/profile/%s/posts?page=%d&per_page=%d", url.PathEscape(username), page, ProfilePageSize)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	for i := range resp.Data.Posts {
		resp.Data.Posts[i].Decorate()
	}
	return resp.Data.Posts, nil
}

// GetProfileReposts retrieves one page of a user's reposts
func GetProfileReposts(ctx context.Context, username string, page int) ([]Post, error) {
	logger.Debug("Fetching profile reposts", "username", username, "page", page)

	var resp envelope[struct {
		Reposts []Post `json:"reposts"`
	}]
	endpoint := fmt.Sprintf("/profile/%s/reposts?page=%d&per_page=%d", url.PathEscape(username), page, ProfilePageSize)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch reposts: %w", err)
	}

	for i := range resp.Data.Reposts {
		resp.Data.Reposts[i].Decorate()
	}
	return resp.Data.Reposts, nil
}

// Follow follows a user
func Follow(ctx context.Context, userID int64) error {
	logger.Debug("Following user", "user_id", userID)

	if err := client.Post(ctx, fmt.Sprintf("/follow/%d", userID), map[string]string{}, nil); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

// Unfollow unfollows a user
func Unfollow(ctx context.Context, userID int64) error {
	logger.Debug("Unfollowing user", "user_id", userID)

	if err := client.Post(ctx, fmt.Sprintf("/unfollow/%d", userID), map[string]string{}, nil); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}
