package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
)

// scriptedReply is what the fake provider answers for one code
type scriptedReply struct {
	n      int
	status places.Status
	err    error
}

// fakeService answers nearby searches from a per-code script and records calls
type fakeService struct {
	mu      sync.Mutex
	replies map[string]scriptedReply
	calls   []places.Request
}

func newFakeService(replies map[string]scriptedReply) *fakeService {
	return &fakeService{replies: replies}
}

func (f *fakeService) NearbySearch(ctx context.Context, req places.Request) (places.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	r, ok := f.replies[req.Type]
	if !ok {
		return places.Response{Status: places.StatusZeroResults}, nil
	}
	if r.err != nil {
		return places.Response{Status: r.status}, r.err
	}

	results := make([]models.PlaceResult, r.n)
	for i := range results {
		results[i] = models.PlaceResult{
			ID:       fmt.Sprintf("%s-%d", req.Type, i),
			Name:     fmt.Sprintf("%s %d", req.Type, i),
			Location: models.Position{Lat: req.Location.Lat + float64(i)*0.001, Lon: req.Location.Lon},
		}
	}
	// Unset status follows the result count
	status := r.status
	if status == places.StatusUnknownError {
		status = places.StatusZeroResults
		if r.n > 0 {
			status = places.StatusOK
		}
	}
	return places.Response{Status: status, Results: results}, nil
}

func (f *fakeService) codes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Type
	}
	return out
}
