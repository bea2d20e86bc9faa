// Package geo provides an R-Tree backed index of places for offline nearby search.
package geo

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/emergency-locator/pkg/models"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371000.0 // metres
)

// spatialPlace wraps a place for R-Tree indexing
type spatialPlace struct {
	*models.Place
	rect rtreego.Rect
}

func (sp *spatialPlace) Bounds() rtreego.Rect {
	return sp.rect
}

// Hit is a place found by a radius search together with its distance in metres
type Hit struct {
	Place    *models.Place
	Distance float64
}

// PlaceIndex is a thread-safe R-Tree based index of places
type PlaceIndex struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewPlaceIndex creates an empty place index
func NewPlaceIndex() *PlaceIndex {
	return &PlaceIndex{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

// IndexPlaces inserts a batch of places. Places without a name are skipped.
func (g *PlaceIndex) IndexPlaces(places []*models.Place) {
	if len(places) == 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	count := int64(0)
	for _, p := range places {
		if p == nil || p.Name == "" {
			continue
		}
		pt := rtreego.Point{p.Location.Lat, p.Location.Lon}
		g.tree.Insert(&spatialPlace{Place: p, rect: pt.ToRect(tolerance)})
		count++
	}
	g.itemCount.Add(count)
}

// SearchRadius returns all places within radiusM metres of center, nearest first
func (g *PlaceIndex) SearchRadius(center models.Position, radiusM float64) ([]Hit, error) {
	if radiusM <= 0 {
		return nil, fmt.Errorf("invalid radius %.1f", radiusM)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// Degrees of latitude are constant; longitude shrinks towards the poles.
	dLat := (radiusM / earthRadius) * (180 / math.Pi)
	dLon := dLat
	if c := math.Cos(center.Lat * math.Pi / 180); c > 0.01 {
		dLon = dLat / c
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{center.Lat - dLat, center.Lon - dLon},
		[]float64{2 * dLat, 2 * dLon},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid radius search: %w", err)
	}

	results := g.tree.SearchIntersect(bounds)

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialPlace)
		if !ok || item.Place == nil {
			continue
		}
		dist := Distance(center, item.Location)
		if dist <= radiusM {
			hits = append(hits, Hit{Place: item.Place, Distance: dist})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance == hits[j].Distance {
			return hits[i].Place.ID < hits[j].Place.ID
		}
		return hits[i].Distance < hits[j].Distance
	})
	return hits, nil
}

// NearestNeighbors returns the n places closest to the given position
func (g *PlaceIndex) NearestNeighbors(center models.Position, n int) []*models.Place {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if n <= 0 {
		return nil
	}

	results := g.tree.NearestNeighbors(n, rtreego.Point{center.Lat, center.Lon})

	places := make([]*models.Place, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialPlace); ok {
			places = append(places, item.Place)
		}
	}
	return places
}

func (g *PlaceIndex) all() []*models.Place {
	world, _ := rtreego.NewRect(rtreego.Point{-90.1, -180.1}, []float64{180.2, 360.2})
	results := g.tree.SearchIntersect(world)

	places := make([]*models.Place, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialPlace); ok {
			places = append(places, item.Place)
		}
	}
	sort.Slice(places, func(i, j int) bool { return places[i].ID < places[j].ID })
	return places
}

// Size returns the number of places in the index
func (g *PlaceIndex) Size() int64 {
	return g.itemCount.Load()
}

// Clear removes all places from the index
func (g *PlaceIndex) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	g.itemCount.Store(0)
}

// Distance returns the haversine distance between two positions in metres
func Distance(a, b models.Position) float64 {
	lat1Rad := a.Lat * math.Pi / 180.0
	lon1Rad := a.Lon * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0
	lon2Rad := b.Lon * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c
}
