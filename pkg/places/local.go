package places

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/kass/emergency-locator/pkg/geo"
	"github.com/kass/emergency-locator/pkg/models"
)

// Local is a Service backed by an in-memory place index
type Local struct {
	index   *geo.PlaceIndex
	verbose bool
}

// NewLocal wraps an index as a Service
func NewLocal(index *geo.PlaceIndex, verbose bool) *Local {
	return &Local{index: index, verbose: verbose}
}

// OpenLocal loads a saved index file. A missing or unreadable index is a map
// initialisation failure.
func OpenLocal(indexFile string, verbose bool) (*Local, error) {
	index := geo.NewPlaceIndex()
	if err := index.LoadFromFile(indexFile); err != nil {
		return nil, fmt.Errorf("local places: %w", err)
	}
	log.Printf("local places: loaded %d places from %s", index.Size(), indexFile)
	return NewLocal(index, verbose), nil
}

// Nearest returns the n indexed places closest to pos whatever their type,
// nearest first
func (l *Local) Nearest(pos models.Position, n int) []models.PlaceResult {
	found := l.index.NearestNeighbors(pos, n)
	sort.SliceStable(found, func(i, j int) bool {
		return geo.Distance(pos, found[i].Location) < geo.Distance(pos, found[j].Location)
	})

	results := make([]models.PlaceResult, len(found))
	for i, p := range found {
		results[i] = p.PlaceResult
	}
	return results
}

// NearbySearch implements Service. Places tagged with req.Type inside the
// radius are returned nearest first, with keyword matches ranked ahead.
func (l *Local) NearbySearch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{Status: StatusUnknownError}, err
	}
	if req.Radius <= 0 {
		return Response{Status: StatusInvalidRequest}, &StatusError{
			Provider: "local places",
			Status:   StatusInvalidRequest,
			Message:  "radius must be positive",
		}
	}

	hits, err := l.index.SearchRadius(req.Location, float64(req.Radius))
	if err != nil {
		return Response{Status: StatusInvalidRequest}, fmt.Errorf("local places: %w", err)
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	matches := make([]*models.Place, 0, len(hits))
	for _, h := range hits {
		if req.Type == "" || h.Place.HasType(req.Type) {
			matches = append(matches, h.Place)
		}
	}
	if keyword != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return strings.Contains(matches[i].Keywords, keyword) &&
				!strings.Contains(matches[j].Keywords, keyword)
		})
	}

	if l.verbose {
		log.Printf("local places: type=%s keyword=%s radius=%d -> %d results", req.Type, req.Keyword, req.Radius, len(matches))
	}

	if len(matches) == 0 {
		return Response{Status: StatusZeroResults}, nil
	}

	results := make([]models.PlaceResult, len(matches))
	for i, m := range matches {
		results[i] = m.PlaceResult
	}
	return Response{Status: StatusOK, Results: results}, nil
}
