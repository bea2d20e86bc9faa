package models

// Position represents a geographic position with latitude and longitude
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// PlaceResult is a single place returned by a places provider
type PlaceResult struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location Position `json:"location"`
	Rating   *float64 `json:"rating,omitempty"`
	Types    []string `json:"types,omitempty"`
}

// HasType reports whether the place is tagged with the given category code
func (p *PlaceResult) HasType(code string) bool {
	for _, t := range p.Types {
		if t == code {
			return true
		}
	}
	return false
}

// Place is an indexed place record used by the offline backends
type Place struct {
	PlaceResult
	Keywords string `json:"keywords,omitempty"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Position
	TopRight   Position
}

// BoundsOf returns the smallest box holding every position
func BoundsOf(first Position, rest ...Position) BoundingBox {
	b := BoundingBox{BottomLeft: first, TopRight: first}
	for _, p := range rest {
		b = b.Extend(p)
	}
	return b
}

// Extend grows the box to include p
func (b BoundingBox) Extend(p Position) BoundingBox {
	b.BottomLeft.Lat = min(b.BottomLeft.Lat, p.Lat)
	b.BottomLeft.Lon = min(b.BottomLeft.Lon, p.Lon)
	b.TopRight.Lat = max(b.TopRight.Lat, p.Lat)
	b.TopRight.Lon = max(b.TopRight.Lon, p.Lon)
	return b
}

func (b BoundingBox) Contains(p Position) bool {
	return p.Lat >= b.BottomLeft.Lat && p.Lat <= b.TopRight.Lat &&
		p.Lon >= b.BottomLeft.Lon && p.Lon <= b.TopRight.Lon
}

func (b BoundingBox) Center() Position {
	return Position{
		Lat: (b.BottomLeft.Lat + b.TopRight.Lat) / 2,
		Lon: (b.BottomLeft.Lon + b.TopRight.Lon) / 2,
	}
}
