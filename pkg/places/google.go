package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/kass/emergency-locator/pkg/models"
)

// DefaultGoogleBaseURL is the Places API endpoint root
const DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/place"

// googlePlacesResult represents a single place from the Nearby Search API
type googlePlacesResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Vicinity string   `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating *float64 `json:"rating,omitempty"`
}

type googlePlacesResponse struct {
	Results      []googlePlacesResult `json:"results"`
	Status       string               `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

// Google is a Service backed by the Google Places Nearby Search API
type Google struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

// GoogleOption configures a Google client
type GoogleOption func(*Google)

// WithBaseURL overrides the API endpoint root
func WithBaseURL(baseURL string) GoogleOption {
	return func(g *Google) {
		if baseURL != "" {
			g.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithVerbose logs every request
func WithVerbose(v bool) GoogleOption {
	return func(g *Google) { g.verbose = v }
}

// NewGoogle creates a Google Places client. An empty key is a map
// initialisation failure.
func NewGoogle(apiKey string, opts ...GoogleOption) (*Google, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google places: missing API key: %w", ErrRequestDenied)
	}
	g := &Google{
		apiKey:     apiKey,
		baseURL:    DefaultGoogleBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NearbySearch implements Service
func (g *Google) NearbySearch(ctx context.Context, req Request) (Response, error) {
	params := url.Values{}
	params.Add("location", fmt.Sprintf("%.6f,%.6f", req.Location.Lat, req.Location.Lon))
	params.Add("radius", fmt.Sprintf("%d", req.Radius))
	if req.Keyword != "" {
		params.Add("keyword", req.Keyword)
	}
	if req.Type != "" {
		params.Add("type", req.Type)
	}
	params.Add("key", g.apiKey)

	fullURL := g.baseURL + "/nearbysearch/json?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	if g.verbose {
		log.Printf("google places: nearby type=%s keyword=%s radius=%d", req.Type, req.Keyword, req.Radius)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Response{Status: StatusUnknownError}, fmt.Errorf("google places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		status := StatusUnknownError
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			status = StatusRequestDenied
		}
		return Response{Status: status}, &StatusError{
			Provider: "google places",
			Status:   status,
			Message:  fmt.Sprintf("http %d: %s", resp.StatusCode, string(body)),
		}
	}

	var gResp googlePlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return Response{Status: StatusUnknownError}, fmt.Errorf("failed to parse google places response: %w", err)
	}

	status := ParseStatus(gResp.Status)
	switch status {
	case StatusOK, StatusZeroResults:
		return Response{Status: status, Results: parseGooglePlaces(gResp.Results)}, nil
	default:
		return Response{Status: status}, &StatusError{
			Provider: "google places",
			Status:   status,
			Message:  gResp.ErrorMessage,
		}
	}
}

// parseGooglePlaces converts API results into PlaceResults, keeping provider order
func parseGooglePlaces(results []googlePlacesResult) []models.PlaceResult {
	places := make([]models.PlaceResult, 0, len(results))
	for _, r := range results {
		if r.Name == "" {
			continue
		}
		places = append(places, models.PlaceResult{
			ID:      r.PlaceID,
			Name:    r.Name,
			Address: r.Vicinity,
			Location: models.Position{
				Lat: r.Geometry.Location.Lat,
				Lon: r.Geometry.Location.Lng,
			},
			Rating: r.Rating,
			Types:  r.Types,
		})
	}
	return places
}
