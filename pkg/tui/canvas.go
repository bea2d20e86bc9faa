package tui

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/session"
)

// Web mercator metres per pixel at zoom 0 on the equator
const metresPerPixel = 156543.03392

// A terminal cell stands for this many pixels across; rows are twice as tall
const cellPixels = 8

const (
	zoomMin = 3
	zoomMax = 19
)

type marker struct {
	pos   models.Position
	title string
	kind  session.MarkerKind
}

// Canvas draws markers on a character grid around a centre point. It
// implements session.Canvas and is safe for concurrent use.
type Canvas struct {
	mu      sync.Mutex
	center  models.Position
	zoom    int
	next    session.MarkerID
	markers map[session.MarkerID]marker
	info    session.MarkerID
	content session.InfoContent
	failed  string

	// fit is resolved to a centre and zoom on each Render
	fit *models.BoundingBox
}

func NewCanvas() *Canvas {
	return &Canvas{
		zoom:    session.ZoomDefault,
		markers: make(map[session.MarkerID]marker),
	}
}

func (c *Canvas) SetCenter(pos models.Position, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center, c.zoom = pos, zoom
	c.fit = nil
}

func (c *Canvas) FitBounds(box models.BoundingBox) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fit = &box
	c.center = box.Center()
}

// Zoom changes the zoom level by delta, keeping the current centre
func (c *Canvas) Zoom(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fit = nil
	c.zoom = min(max(c.zoom+delta, zoomMin), zoomMax)
}

func (c *Canvas) AddMarker(pos models.Position, title string, kind session.MarkerKind) session.MarkerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.markers[c.next] = marker{pos: pos, title: title, kind: kind}
	return c.next
}

func (c *Canvas) MoveMarker(id session.MarkerID, pos models.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.markers[id]; ok {
		m.pos = pos
		c.markers[id] = m
	}
}

func (c *Canvas) RemoveMarker(id session.MarkerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.markers, id)
	if c.info == id {
		c.info = 0
	}
}

func (c *Canvas) ShowInfo(id session.MarkerID, content session.InfoContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.markers[id]; !ok {
		return
	}
	c.info, c.content = id, content
}

func (c *Canvas) Fail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = message
	c.markers = make(map[session.MarkerID]marker)
	c.info = 0
}

// Info returns the open info window, if any
func (c *Canvas) Info() (session.InfoContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == 0 {
		return session.InfoContent{}, false
	}
	return c.content, true
}

func (c *Canvas) Center() (models.Position, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center, c.zoom
}

// project returns the grid cell of pos for a width x height grid
func project(center models.Position, zoom int, pos models.Position, width, height int) (col, row int, ok bool) {
	cosLat := math.Cos(center.Lat * math.Pi / 180)
	cell := metresPerPixel * cosLat / math.Pow(2, float64(zoom)) * cellPixels

	dx := (pos.Lon - center.Lon) * 111320 * cosLat / cell
	dy := (center.Lat - pos.Lat) * 110540 / (cell * 2)

	col = width/2 + int(math.Round(dx))
	row = height/2 + int(math.Round(dy))
	return col, row, col >= 0 && col < width && row >= 0 && row < height
}

// fitZoom is the closest zoom at which both corners of box stay off the
// grid's outer edge
func fitZoom(box models.BoundingBox, width, height int) int {
	center := box.Center()
	for z := session.ZoomPlace; z > zoomMin; z-- {
		_, _, okBL := project(center, z, box.BottomLeft, width-2, height-2)
		_, _, okTR := project(center, z, box.TopRight, width-2, height-2)
		if okBL && okTR {
			return z
		}
	}
	return zoomMin
}

// Render draws the grid. Place markers are numbered in the order they were
// added, which matches the result list.
func (c *Canvas) Render(width, height int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width < 3 || height < 3 {
		return ""
	}
	if c.failed != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			errorStyle.Render(c.failed))
	}
	if c.fit != nil {
		c.center = c.fit.Center()
		c.zoom = fitZoom(*c.fit, width, height)
	}

	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, width)
		for col := range grid[r] {
			grid[r][col] = dimStyle.Render("·")
		}
	}

	ids := make([]session.MarkerID, 0, len(c.markers))
	for id := range c.markers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	n := 0
	for _, id := range ids {
		m := c.markers[id]
		col, row, ok := project(c.center, c.zoom, m.pos, width, height)
		if m.kind == session.MarkerUser {
			if ok {
				grid[row][col] = userStyle.Render("◉")
			}
			continue
		}
		n++
		if !ok {
			continue
		}
		label := markerLabel(n)
		if id == c.info {
			grid[row][col] = selectedStyle.Render(label)
		} else {
			grid[row][col] = placeStyle.Render(label)
		}
	}

	lines := make([]string, height)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return strings.Join(lines, "\n")
}

// markerLabel returns 1-9 then a-z, then +
func markerLabel(n int) string {
	switch {
	case n < 10:
		return strconv.Itoa(n)
	case n < 36:
		return string(rune('a' + n - 10))
	default:
		return "+"
	}
}
