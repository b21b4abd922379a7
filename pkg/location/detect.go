package location

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/telemetry"
)

// DefaultGeocoderURL is the public Nominatim instance
const DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

var (
	// ErrNoAddress is returned when the coordinates reverse-geocode to nothing
	ErrNoAddress = errors.New("We couldn't detect your location. Please pick a neighborhood manually.")
	// ErrNoMatch is returned when the address matches no neighborhood
	ErrNoMatch = errors.New("We couldn't match your current location. Please pick a neighborhood manually.")
)

// Geocoder turns coordinates into a street address
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// Nominatim is an OpenStreetMap reverse geocoder
type Nominatim struct {
	client *resty.Client
}

// NewNominatim creates a geocoder against baseURL, or DefaultGeocoderURL
// when it is empty
func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultGeocoderURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetTransport(telemetry.WrapTransport(nil)).
		SetHeader("User-Agent", "pulse-cli").
		SetHeader("Accept", "application/json")
	return &Nominatim{client: c}
}

// Reverse returns the display name of the place at lat, lon
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    fmt.Sprintf("%f", lat),
			"lon":    fmt.Sprintf("%f", lon),
			"format": "json",
		}).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("reverse geocode failed with status %d", resp.StatusCode())
	}

	var place struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(resp.Body(), &place); err != nil {
		return "", fmt.Errorf("failed to parse geocoder response: %w", err)
	}
	return place.DisplayName, nil
}

// Detection is the neighborhood nearest to the device
type Detection struct {
	Address    string
	Suggestion api.LocationSuggestion
	DistanceKm float64
}

// Detector picks a neighborhood for device coordinates
type Detector struct {
	geocoder Geocoder
	search   SearchFunc
}

// NewDetector creates a detector. A nil search uses the API.
func NewDetector(geocoder Geocoder, search SearchFunc) *Detector {
	if search == nil {
		search = api.SearchLocations
	}
	return &Detector{geocoder: geocoder, search: search}
}

// Detect reverse-geocodes lat, lon, searches the address and returns the
// candidate closest to the device
func (d *Detector) Detect(ctx context.Context, lat, lon float64) (*Detection, error) {
	address, err := d.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		logger.Debug("Reverse geocoding failed", "error", err)
		address = ""
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoAddress
	}

	candidates, err := d.search(ctx, address)
	if err != nil {
		return nil, err
	}

	best, ok := Nearest(candidates, lat, lon)
	if !ok {
		return nil, ErrNoMatch
	}
	return &Detection{
		Address:    address,
		Suggestion: best,
		DistanceKm: DistanceKm(lat, lon, float64(best.Latitude), float64(best.Longitude)),
	}, nil
}

// Nearest returns the candidate at the smallest planar distance in degrees
func Nearest(candidates []api.LocationSuggestion, lat, lon float64) (api.LocationSuggestion, bool) {
	if len(candidates) == 0 {
		return api.LocationSuggestion{}, false
	}

	best := candidates[0]
	bestDist := math.Inf(1)
	for _, c := range candidates {
		dist := math.Hypot(float64(c.Latitude)-lat, float64(c.Longitude)-lon)
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, true
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
