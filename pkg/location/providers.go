package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kass/emergency-locator/pkg/models"
)

// Static always reports a fixed, configured position
type Static struct {
	Position models.Position
}

// NewStatic validates the coordinates and returns a Static provider
func NewStatic(lat, lon float64) (*Static, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid coordinates %.6f,%.6f", lat, lon)
	}
	return &Static{Position: models.Position{Lat: lat, Lon: lon}}, nil
}

func (s *Static) CurrentPosition(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, &Error{Kind: Classify(err), Err: err}
	}
	return s.Position, nil
}

// Permission reports granted: configured coordinates need no prompt
func (s *Static) Permission(context.Context) Permission {
	return PermissionGranted
}

// DefaultIPAPIURL is the ip-api.com JSON endpoint
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country"

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

// IPAPI approximates the position from the host's public IP address
type IPAPI struct {
	url        string
	httpClient *http.Client
}

// NewIPAPI creates an IP geolocation provider. An empty url uses DefaultIPAPIURL.
func NewIPAPI(url string, client *http.Client) *IPAPI {
	if url == "" {
		url = DefaultIPAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &IPAPI{url: url, httpClient: client}
}

func (p *IPAPI) CurrentPosition(ctx context.Context) (models.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.Position{}, &Error{Kind: Unknown, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		kind := PositionUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = Timeout
		}
		return models.Position{}, &Error{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return models.Position{}, &Error{Kind: PermissionDenied, Err: fmt.Errorf("ip geolocation returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return models.Position{}, &Error{Kind: PositionUnavailable, Err: fmt.Errorf("ip geolocation returned status %d", resp.StatusCode)}
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Position{}, &Error{Kind: Unknown, Err: fmt.Errorf("failed to parse ip geolocation response: %w", err)}
	}
	if body.Status != "success" {
		return models.Position{}, &Error{Kind: PositionUnavailable, Err: fmt.Errorf("ip geolocation failed: %s", body.Message)}
	}

	return models.Position{Lat: body.Lat, Lon: body.Lon}, nil
}

// WithTimeout bounds every call of p by d; an expired deadline is reported as Timeout
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: d}
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

func (t *timeoutProvider) CurrentPosition(ctx context.Context) (models.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		pos models.Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := t.Provider.CurrentPosition(ctx)
		done <- result{pos, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			var le *Error
			if errors.As(r.err, &le) {
				return models.Position{}, r.err
			}
			return models.Position{}, &Error{Kind: Classify(r.err), Err: r.err}
		}
		return r.pos, nil
	case <-ctx.Done():
		return models.Position{}, &Error{Kind: Classify(ctx.Err()), Err: ctx.Err()}
	}
}

// Permission forwards to the wrapped provider when it can report one
func (t *timeoutProvider) Permission(ctx context.Context) Permission {
	if pc, ok := t.Provider.(PermissionChecker); ok {
		return pc.Permission(ctx)
	}
	return PermissionPrompt
}
