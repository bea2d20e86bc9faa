package session

import (
	"fmt"
	"strings"

	"github.com/kass/emergency-locator/pkg/models"
)

// Zoom levels used by the session
const (
	ZoomDefault = 14
	ZoomUser    = 15
	ZoomPlace   = 17
)

// MarkerID identifies a marker on a Canvas
type MarkerID int

// MarkerKind distinguishes the user marker from place markers
type MarkerKind int

const (
	MarkerPlace MarkerKind = iota
	MarkerUser
)

// InfoContent is shown in a marker's info window
type InfoContent struct {
	Title   string
	Address string
	Rating  *float64
}

func (c InfoContent) String() string {
	var b strings.Builder
	b.WriteString(c.Title)
	if c.Address != "" {
		b.WriteString("\n")
		b.WriteString(c.Address)
	}
	if c.Rating != nil {
		fmt.Fprintf(&b, "\nRating: %.1f ★", *c.Rating)
	}
	return b.String()
}

// Canvas is the map surface a session draws on
type Canvas interface {
	SetCenter(pos models.Position, zoom int)
	// FitBounds moves and zooms the view so the whole box is visible
	FitBounds(box models.BoundingBox)
	AddMarker(pos models.Position, title string, kind MarkerKind) MarkerID
	MoveMarker(id MarkerID, pos models.Position)
	RemoveMarker(id MarkerID)
	ShowInfo(id MarkerID, content InfoContent)
	// Fail replaces the map with a static error message
	Fail(message string)
}

// MarkerSet tracks the place markers currently on a canvas
type MarkerSet struct {
	ids []MarkerID
}

func (m *MarkerSet) Add(id MarkerID) {
	m.ids = append(m.ids, id)
}

// Clear removes every tracked marker from the canvas
func (m *MarkerSet) Clear(c Canvas) {
	for _, id := range m.ids {
		c.RemoveMarker(id)
	}
	m.ids = nil
}

func (m *MarkerSet) Len() int {
	return len(m.ids)
}

func (m *MarkerSet) IDs() []MarkerID {
	return append([]MarkerID(nil), m.ids...)
}
