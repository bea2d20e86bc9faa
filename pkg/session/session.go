// Package session holds the state of one user session: the known position,
// the markers on the map, the result list and the status line. Searches are
// split into Begin, Run and Complete so an event loop can run the provider
// calls off its own goroutine and drop completions that arrive out of order.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/kass/emergency-locator/pkg/location"
	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/kass/emergency-locator/pkg/search"
)

// DefaultCenter is where the map starts before the user is located (Brasília)
var DefaultCenter = models.Position{Lat: -15.77972, Lon: -47.92972}

// Searcher runs one category search; *search.Orchestrator implements it
type Searcher interface {
	Search(ctx context.Context, category string, pos models.Position) search.Outcome
}

// Entry is one line of the result list. Place is nil for informational
// entries such as the loading line or "nothing found".
type Entry struct {
	Text   string
	Place  *models.PlaceResult
	Marker MarkerID
}

// Ticket identifies one in-flight search
type Ticket struct {
	Seq      uint64
	Category string
	Position models.Position
}

// Options configures a Session
type Options struct {
	Center   models.Position
	Zoom     int
	Contacts []Contact
}

// Session is the state of one user session. All methods are safe for
// concurrent use.
type Session struct {
	ID string

	locator  location.Provider
	searcher Searcher
	canvas   Canvas
	popup    *Popup

	mu            sync.Mutex
	position      *models.Position
	userMarker    MarkerID
	hasUserMarker bool
	markers       MarkerSet
	results       []Entry
	status        string
	controls      bool
	active        string
	mapFailed     bool
	seq           uint64
}

// New creates a session and centres the canvas on the configured default.
// A nil locator means geolocation is not supported.
func New(locator location.Provider, searcher Searcher, canvas Canvas, opts Options) *Session {
	if opts.Center == (models.Position{}) {
		opts.Center = DefaultCenter
	}
	if opts.Zoom <= 0 {
		opts.Zoom = ZoomDefault
	}

	s := &Session{
		ID:       uuid.NewString(),
		locator:  locator,
		searcher: searcher,
		canvas:   canvas,
		popup:    NewPopup(opts.Contacts),
	}
	canvas.SetCenter(opts.Center, opts.Zoom)
	return s
}

// Start acquires the location straight away when the provider reports that
// access was already granted. It reports whether it did.
func (s *Session) Start(ctx context.Context) bool {
	pc, ok := s.locator.(location.PermissionChecker)
	if !ok || pc.Permission(ctx) != location.PermissionGranted {
		return false
	}
	_, _ = s.AcquireLocation(ctx)
	return true
}

// AcquireLocation asks the provider for the current position once. On
// failure the status explains why and the controls are left as they were.
// Once the map has failed the position is still recorded but the status
// keeps the failure message.
func (s *Session) AcquireLocation(ctx context.Context) (models.Position, error) {
	if s.locator == nil {
		s.setStatus(MsgUnsupported)
		return models.Position{}, &location.Error{Kind: location.PositionUnavailable, Err: errors.New("geolocation not supported")}
	}

	s.setStatus(MsgLocating)
	pos, err := s.locator.CurrentPosition(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		kind := location.Classify(err)
		s.setStatusLocked(locationMessage(kind))
		log.Printf("session %s: location failed (%s): %v", s.ID, kind, err)
		return models.Position{}, err
	}

	p := pos
	s.position = &p
	if s.mapFailed {
		return pos, nil
	}

	s.canvas.SetCenter(pos, ZoomUser)
	if s.hasUserMarker {
		s.canvas.MoveMarker(s.userMarker, pos)
	} else {
		s.userMarker = s.canvas.AddMarker(pos, MsgYourLocation, MarkerUser)
		s.hasUserMarker = true
	}
	s.controls = true
	s.status = MsgLocated
	return pos, nil
}

// SelectCategory runs a full search for category and renders its outcome.
// The bool is false when no search was issued.
func (s *Session) SelectCategory(ctx context.Context, category string) (search.Outcome, bool) {
	t, ok := s.Begin(category)
	if !ok {
		return search.Outcome{Kind: search.Empty, Category: category}, false
	}
	out := s.Run(ctx, t)
	s.Complete(t, out)
	return out, true
}

// Begin clears the previous results and markers, shows the loading state and
// returns a ticket for the new search. It refuses when no position is known
// or the map has failed.
func (s *Session) Begin(category string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mapFailed {
		return Ticket{}, false
	}
	s.active = category
	if s.position == nil {
		s.status = MsgShareFirst
		return Ticket{}, false
	}

	s.seq++
	s.markers.Clear(s.canvas)
	s.results = []Entry{{Text: MsgSearching}}
	s.status = MsgSearching

	return Ticket{Seq: s.seq, Category: category, Position: *s.position}, true
}

// Run performs the provider calls for t. It touches no session state.
func (s *Session) Run(ctx context.Context, t Ticket) search.Outcome {
	return s.searcher.Search(ctx, t.Category, t.Position)
}

// Complete renders out if t is still the latest search. Stale tickets are
// dropped and Complete returns false.
func (s *Session) Complete(t Ticket, out search.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Seq != s.seq || s.mapFailed {
		return false
	}

	if out.Kind == search.Empty && errors.Is(out.Err, places.ErrRequestDenied) {
		s.failLocked(out.Err)
		return true
	}

	s.markers.Clear(s.canvas)
	s.results = nil

	if out.Kind != search.Success || len(out.Places) == 0 {
		s.results = []Entry{{Text: MsgNothingFound}}
		s.status = MsgNothingFound
		return true
	}

	box := models.BoundsOf(t.Position)
	for i := range out.Places {
		p := out.Places[i]
		id := s.canvas.AddMarker(p.Location, p.Name, MarkerPlace)
		s.markers.Add(id)
		s.results = append(s.results, Entry{Text: p.Name, Place: &p, Marker: id})
		box = box.Extend(p.Location)
	}
	s.canvas.FitBounds(box)
	s.status = foundMessage(len(out.Places))
	return true
}

// FocusResult centres the map on result i
func (s *Session) FocusResult(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.placeEntry(i)
	if !ok {
		return false
	}
	s.canvas.SetCenter(e.Place.Location, ZoomPlace)
	return true
}

// OpenInfo opens the info window of result i's marker
func (s *Session) OpenInfo(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.placeEntry(i)
	if !ok {
		return false
	}
	s.canvas.ShowInfo(e.Marker, InfoContent{
		Title:   e.Place.Name,
		Address: e.Place.Address,
		Rating:  e.Place.Rating,
	})
	return true
}

// MapFailed replaces the map with an error message and disables searching
func (s *Session) MapFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(err)
}

func (s *Session) failLocked(err error) {
	msg := MsgMapLoadFailure
	if errors.Is(err, places.ErrRequestDenied) {
		msg = MsgMapAuthFailure
	}
	log.Printf("session %s: map failed: %v", s.ID, err)

	s.mapFailed = true
	s.controls = false
	s.markers = MarkerSet{}
	s.results = nil
	s.status = msg
	s.canvas.Fail(msg)
}

func (s *Session) placeEntry(i int) (Entry, bool) {
	if i < 0 || i >= len(s.results) || s.results[i].Place == nil {
		return Entry{}, false
	}
	return s.results[i], true
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.setStatusLocked(msg)
	s.mu.Unlock()
}

// setStatusLocked leaves the map failure message in place
func (s *Session) setStatusLocked(msg string) {
	if s.mapFailed {
		return
	}
	s.status = msg
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Results() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.results...)
}

func (s *Session) ControlsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

func (s *Session) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Position returns the last known position
func (s *Session) Position() (models.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return models.Position{}, false
	}
	return *s.position, true
}

// Failed reports whether the map has failed
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapFailed
}

func (s *Session) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers.Len()
}

func (s *Session) Popup() *Popup {
	return s.popup
}
