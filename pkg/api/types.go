package api

import (
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// envelope is the common {status, message, data} response wrapper
type envelope[T any] struct {
	Status  string `json:"status"`
	Success string `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Ack is a response that only reports status
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Coordinate is a latitude or longitude that the server may send as a
// number, a numeric string or null.
type Coordinate float64

// UnmarshalJSON accepts numbers, numeric strings and null
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = Coordinate(f)
	return nil
}

// MarshalJSON writes the coordinate as a number
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(c))
}

// UserSummary is the author block embedded in posts, comments and messages
type UserSummary struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Post is a feed item. The last three fields are client-side decoration.
type Post struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	Body             string      `json:"body"`
	Thumbnail        string      `json:"thumbnail"`
	Location         string      `json:"location"`
	Latitude         Coordinate  `json:"latitude,omitempty"`
	Longitude        Coordinate  `json:"longitude,omitempty"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at,omitempty"`
	TimeSincePost    string      `json:"time_since_post"`
	CommentsCount    int         `json:"comments_count"`
	ReactionsCount   int         `json:"reactions_count"`
	User             UserSummary `json:"user"`
	TopReactions     []string    `json:"top_reactions"`
	UserHasReacted   bool        `json:"user_has_reacted"`
	UserReactionType string      `json:"user_reaction_type,omitempty"`
	HasUserReposted  bool        `json:"has_user_reposted"`

	UserReaction   string `json:"user_reaction,omitempty"`
	TotalReactions int    `json:"total_reactions"`
	IsNewlyPosted  bool   `json:"is_newly_posted,omitempty"`
}

// Decorate derives the client reaction fields from the server fields
func (p *Post) Decorate() {
	p.UserReaction = ""
	if p.UserHasReacted {
		p.UserReaction = p.UserReactionType
	}
	p.TotalReactions = p.ReactionsCount
	if p.TopReactions == nil {
		p.TopReactions = []string{}
	}
}

// Clone returns a copy that shares no slices with p
func (p Post) Clone() Post {
	p.TopReactions = append([]string{}, p.TopReactions...)
	return p
}

// Pagination is the page block returned by list endpoints
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev,omitempty"`
	TotalItems  int  `json:"total_items,omitempty"`
	TotalPages  int  `json:"total_pages"`
}
