package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/location"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
)

// LocationService resolves neighborhoods
type LocationService struct {
	search   location.SearchFunc
	geocoder location.Geocoder
}

// NewLocationService creates a location service backed by the API and the
// configured geocoder
func NewLocationService() *LocationService {
	return &LocationService{
		search:   api.SearchLocations,
		geocoder: location.NewNominatim(config.GetString("location.geocoder_url")),
	}
}

// Search prints the neighborhoods matching query
func (ls *LocationService) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if len([]rune(query)) <= location.MinQueryLength {
		return clierrors.ValidationError("query", fmt.Sprintf("must be longer than %d characters", location.MinQueryLength))
	}

	results, err := ls.search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		formatter.PrintInfo("No neighborhoods match %q.", query)
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Label, r.DropdownValue, fmt.Sprintf("%.4f, %.4f", float64(r.Latitude), float64(r.Longitude))})
	}
	return output.PrintList("Neighborhoods", results, []string{"LABEL", "VALUE", "COORDINATES"}, rows)
}

// Detect prints the neighborhood nearest to lat, lon
func (ls *LocationService) Detect(ctx context.Context, lat, lon float64) error {
	d, err := ls.detect(ctx, lat, lon)
	if err != nil {
		return err
	}
	return output.PrintRecord("Detected location", map[string]interface{}{
		"address":      d.Address,
		"neighborhood": d.Suggestion.DropdownValue,
		"distance_km":  fmt.Sprintf("%.2f", d.DistanceKm),
	})
}

// Resolve confirms free text against the search results. It must equal a
// suggestion's value or label; anything else is ambiguous.
func (ls *LocationService) Resolve(ctx context.Context, text string) (api.LocationSuggestion, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= location.MinQueryLength {
		return api.LocationSuggestion{}, clierrors.ValidationError("location", fmt.Sprintf("must be longer than %d characters", location.MinQueryLength))
	}

	results, err := ls.search(ctx, text)
	if err != nil {
		return api.LocationSuggestion{}, err
	}
	for _, r := range results {
		if strings.EqualFold(r.DropdownValue, text) || strings.EqualFold(r.Label, text) {
			return r, nil
		}
	}

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.DropdownValue)
	}
	verr := clierrors.ValidationError("location", fmt.Sprintf("%q is not a known neighborhood", text))
	if len(names) > 0 {
		return api.LocationSuggestion{}, verr.WithSuggestion("Did you mean: " + strings.Join(names, "; "))
	}
	return api.LocationSuggestion{}, verr.WithSuggestion("Try 'pulse location search <text>'.")
}

func (ls *LocationService) detect(ctx context.Context, lat, lon float64) (*location.Detection, error) {
	return location.NewDetector(ls.geocoder, ls.search).Detect(ctx, lat, lon)
}

// Pick asks for a neighborhood interactively. Each answer goes through
// the debounced search; the user then chooses one of the results.
func (ls *LocationService) Pick(ctx context.Context) (api.LocationSuggestion, error) {
	results := make(chan []api.LocationSuggestion, 1)
	delay := time.Duration(config.GetInt("location.debounce_ms")) * time.Millisecond
	search := location.NewSearch(ctx, ls.search, delay, func(r []api.LocationSuggestion, err error) {
		select {
		case results <- r:
		default:
		}
	})
	defer search.Close()
	sel := location.NewSelection(search)

	for {
		query, err := prompter.PromptString("Neighborhood: ")
		if err != nil {
			return api.LocationSuggestion{}, err
		}
		if len([]rune(query)) <= location.MinQueryLength {
			formatter.PrintWarning("type at least %d characters", location.MinQueryLength+1)
			continue
		}

		sel.SetText(query)
		var found []api.LocationSuggestion
		select {
		case found = <-results:
		case <-ctx.Done():
			return api.LocationSuggestion{}, ctx.Err()
		}
		if len(found) == 0 {
			formatter.PrintWarning("no neighborhoods match %q", query)
			continue
		}

		options := make([]string, len(found))
		for i, f := range found {
			options[i] = f.DropdownValue
		}
		idx, err := prompter.PromptSelect("Pick a neighborhood:", options)
		if err != nil {
			formatter.PrintWarning("%v", err)
			continue
		}

		sel.Select(found[idx])
		picked, _ := sel.Selected()
		return picked, nil
	}
}
