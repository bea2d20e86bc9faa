package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/emergency-locator/pkg/geo"
	"github.com/kass/emergency-locator/pkg/location"
	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/kass/emergency-locator/pkg/search"
	"github.com/kass/emergency-locator/pkg/session"
)

var rodoviaria = models.Position{Lat: -15.7939, Lon: -47.8828}

func newTestModel(t *testing.T) Model {
	t.Helper()
	ps, err := geo.ReadCSVFile("../../data/places_sample.csv")
	require.NoError(t, err)
	index := geo.NewPlaceIndex()
	index.IndexPlaces(ps)

	static, err := location.NewStatic(rodoviaria.Lat, rodoviaria.Lon)
	require.NoError(t, err)

	canvas := NewCanvas()
	orch := search.NewOrchestrator(places.NewLocal(index, false), search.Options{})
	sess := session.New(static, orch, canvas, session.Options{})
	return New(context.Background(), sess, canvas)
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestCategoryBeforeLocation(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, press("1"))
	assert.Nil(t, cmd)
	assert.Equal(t, session.MsgShareFirst, m.sess.Status())
	assert.Contains(t, m.View(), session.MsgShareFirst)
}

func TestLocateAndSearch(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, press("l"))
	require.NotNil(t, cmd)
	assert.True(t, m.busy())
	m, _ = update(t, m, cmd())
	assert.False(t, m.busy())
	assert.True(t, m.sess.ControlsEnabled())

	m, cmd = update(t, m, press("1"))
	require.NotNil(t, cmd)
	assert.Equal(t, session.MsgSearching, m.sess.Status())
	assert.True(t, m.busy())

	m, _ = update(t, m, cmd())
	assert.False(t, m.busy())

	results := m.sess.Results()
	require.NotEmpty(t, results)
	require.NotNil(t, results[0].Place)
	assert.True(t, results[0].Place.HasType("hospital"))

	// Long names are cut to the list width instead of wrapping
	width := listWidth - listStyle.GetHorizontalPadding()
	for _, line := range strings.Split(m.renderResults(width), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), width, line)
	}
	assert.Contains(t, m.View(), "> 1 "+runewidth.Truncate(results[0].Text, width-4, "…"))

	// The view is fitted so every result has a marker on the map
	grid := m.canvas.Render(58, 18)
	n := 0
	for _, e := range results {
		if e.Place != nil {
			n++
			assert.Contains(t, grid, markerLabel(n), e.Text)
		}
	}
	assert.Equal(t, 3, n)
	assert.Contains(t, grid, "◉")

	m, _ = update(t, m, press("enter"))
	info, ok := m.canvas.Info()
	require.True(t, ok)
	assert.Equal(t, results[0].Text, info.Title)
	center, zoom := m.canvas.Center()
	assert.Equal(t, results[0].Place.Location, center)
	assert.Equal(t, session.ZoomPlace, zoom)
}

func TestStaleSearchIgnored(t *testing.T) {
	m := newTestModel(t)
	_, err := m.sess.AcquireLocation(context.Background())
	require.NoError(t, err)

	m, first := update(t, m, press("1"))
	require.NotNil(t, first)
	m, second := update(t, m, press("5"))
	require.NotNil(t, second)

	secondMsg := second()
	firstMsg := first()

	m, _ = update(t, m, secondMsg)
	assert.False(t, m.busy())
	m, _ = update(t, m, firstMsg)

	assert.Equal(t, "delegacia", m.sess.ActiveCategory())
	for _, e := range m.sess.Results() {
		if e.Place != nil {
			assert.True(t, e.Place.HasType("police"), e.Text)
		}
	}
}

func TestEmergencyPopup(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, press("e"))
	require.True(t, m.sess.Popup().Visible())
	assert.Contains(t, m.View(), "SAMU")

	m, _ = update(t, m, press("down"))
	m, _ = update(t, m, press("enter"))
	assert.Equal(t, "Dial tel:192", m.notice)
	assert.True(t, m.sess.Popup().Visible())

	m, _ = update(t, m, press("x"))
	assert.False(t, m.sess.Popup().Visible())

	m, _ = update(t, m, press("e"))
	m, _ = update(t, m, press("esc"))
	assert.False(t, m.sess.Popup().Visible())
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas()
	c.SetCenter(rodoviaria, session.ZoomUser)
	c.AddMarker(rodoviaria, "you", session.MarkerUser)
	far := c.AddMarker(models.Position{Lat: 10, Lon: 10}, "far away", session.MarkerPlace)

	lines := strings.Split(c.Render(21, 9), "\n")
	require.Len(t, lines, 9)
	assert.Contains(t, lines[4], "◉")

	c.ShowInfo(far, session.InfoContent{Title: "far away"})
	_, ok := c.Info()
	assert.True(t, ok)
	c.RemoveMarker(far)
	_, ok = c.Info()
	assert.False(t, ok)

	c.Fail(session.MsgMapAuthFailure)
	assert.Contains(t, c.Render(80, 5), session.MsgMapAuthFailure)
	assert.Equal(t, "", c.Render(2, 2))
}

func TestCanvasFitAndZoom(t *testing.T) {
	c := NewCanvas()
	c.SetCenter(rodoviaria, session.ZoomUser)
	c.AddMarker(rodoviaria, "you", session.MarkerUser)
	taguatinga := models.Position{Lat: -15.8330, Lon: -48.0540}
	c.AddMarker(taguatinga, "Hospital Regional de Taguatinga", session.MarkerPlace)

	// 18 km away: off the grid at street zoom
	assert.NotContains(t, c.Render(40, 12), "1")

	c.FitBounds(models.BoundsOf(rodoviaria, taguatinga))
	grid := c.Render(40, 12)
	assert.Contains(t, grid, "1")
	assert.Contains(t, grid, "◉")
	_, fitted := c.Center()
	assert.Less(t, fitted, session.ZoomUser)

	c.Zoom(1)
	_, zoom := c.Center()
	assert.Equal(t, fitted+1, zoom)
	c.Zoom(-100)
	_, zoom = c.Center()
	assert.Equal(t, zoomMin, zoom)
	c.Zoom(100)
	_, zoom = c.Center()
	assert.Equal(t, zoomMax, zoom)
}

func TestZoomKeys(t *testing.T) {
	m := newTestModel(t)
	_, before := m.canvas.Center()

	m, _ = update(t, m, press("-"))
	_, zoom := m.canvas.Center()
	assert.Equal(t, before-1, zoom)

	m, _ = update(t, m, press("+"))
	m, _ = update(t, m, press("="))
	_, zoom = m.canvas.Center()
	assert.Equal(t, before+1, zoom)
}

func TestMarkerLabel(t *testing.T) {
	assert.Equal(t, "1", markerLabel(1))
	assert.Equal(t, "9", markerLabel(9))
	assert.Equal(t, "a", markerLabel(10))
	assert.Equal(t, "+", markerLabel(40))
}
