package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// LocationSuggestion is a canonical neighborhood candidate
type LocationSuggestion struct {
	Label         string     `json:"label"`
	DropdownValue string     `json:"dropdown_value"`
	Latitude      Coordinate `json:"latitude"`
	Longitude     Coordinate `json:"longitude"`
}

type locationResult struct {
	DropdownValue     string     `json:"dropdown_value"`
	HomeLocationLabel string     `json:"home_location_label"`
	Latitude          Coordinate `json:"latitude"`
	Longitude         Coordinate `json:"longitude"`
}

// SearchLocations resolves free text to neighborhood suggestions
func SearchLocations(ctx context.Context, query string) ([]LocationSuggestion, error) {
	logger.Debug("Searching locations", "query", query)

	var resp struct {
		Success      string           `json:"success"`
		TotalResults int              `json:"total_results"`
		Results      []locationResult `json:"results"`
	}
	endpoint := "/content/search_home_location?query=" + url.QueryEscape(query)
	if err := client.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	suggestions := make([]LocationSuggestion, 0, len(resp.Results))
	for _, r := range resp.Results {
		label := r.HomeLocationLabel
		if label == "" {
			label = r.DropdownValue
		}
		suggestions = append(suggestions, LocationSuggestion{
			Label:         label,
			DropdownValue: r.DropdownValue,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
		})
	}
	return suggestions, nil
}
