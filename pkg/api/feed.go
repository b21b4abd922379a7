package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// DefaultLocation is the city-wide feed; it is never sent as a filter
const DefaultLocation = "Seattle"

// CombinedFeedQuery builds the combined feed path for a page and location
func CombinedFeedQuery(page int, location string) string {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	location = strings.TrimSpace(location)
	if location != "" && location != DefaultLocation {
		params.Set("location", location)
	}
	return "/content/combined_feed?" + params.Encode()
}

// GetCombinedFeed retrieves one page of the combined feed, decorated with
// the viewer's reaction state
func GetCombinedFeed(ctx context.Context, page int, location string) ([]Post, error) {
	logger.Debug("Fetching combined feed", "page", page, "location", location)

	var resp envelope[struct {
		Content []Post `json:"content"`
	}]
	if err := client.Get(ctx, CombinedFeedQuery(page, location), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	posts := resp.Data.Content
	for i := range posts {
		posts[i].Decorate()
	}
	return posts, nil
}

// ContentDetails is the full view of one piece of content
type ContentDetails struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	ImageURL       string      `json:"image_url,omitempty"`
	Location       string      `json:"location"`
	SourceURL      string      `json:"source_url,omitempty"`
	CreatedAt      string      `json:"created_at,omitempty"`
	User           UserSummary `json:"user"`
	UserReaction   string      `json:"user_reaction,omitempty"`
	TotalReactions int         `json:"total_reactions"`
	TopReactions   []string    `json:"top_reactions,omitempty"`
	Comments       []Comment   `json:"comments"`
}

// GetContentDetails retrieves content with its top-level comments
func GetContentDetails(ctx context.Context, contentType string, contentID int64) (*ContentDetails, error) {
	logger.Debug("Fetching content details", "type", contentType, "content_id", contentID)

	var resp envelope[ContentDetails]
	if err := client.Get(ctx, fmt.Sprintf("/content/%s/%d", url.PathEscape(contentType), contentID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch content details: %w", err)
	}

	for i := range resp.Data.Comments {
		resp.Data.Comments[i].Decorate()
	}
	return &resp.Data, nil
}
