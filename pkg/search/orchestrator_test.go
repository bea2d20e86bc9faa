package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brasilia = models.Position{Lat: -15.7997, Lon: -47.8874}

func TestCodes(t *testing.T) {
	testCases := []struct {
		category string
		expected []string
	}{
		{"hospital", []string{"hospital", "health"}},
		{"farmacia", []string{"pharmacy", "drugstore"}},
		{"upa", []string{"hospital", "health", "doctor", "emergency_room"}},
		{"prontosocorro", []string{"hospital", "emergency_room", "health"}},
		{"delegacia", []string{"police", "local_government_office"}},
		{"fire_station", []string{"fire_station"}},
	}

	for _, tc := range testCases {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.expected, Codes(tc.category))
		})
	}
}

func TestCategoriesAreCopies(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, "hospital", cats[0].Key)

	cats[0].Codes[0] = "mutated"
	assert.Equal(t, []string{"hospital", "health"}, Codes("hospital"))

	_, ok := Lookup("delegacia")
	assert.True(t, ok)
	_, ok = Lookup("bakery")
	assert.False(t, ok)
}

func TestPrimarySuccess(t *testing.T) {
	svc := newFakeService(map[string]scriptedReply{"hospital": {n: 3}})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "hospital", brasilia)

	assert.Equal(t, Success, out.Kind)
	assert.Len(t, out.Places, 3)
	assert.Equal(t, 1, out.Calls)
	assert.Equal(t, "hospital", out.Code)
	assert.Equal(t, []string{"hospital"}, svc.codes())

	req := svc.calls[0]
	assert.Equal(t, brasilia, req.Location)
	assert.Equal(t, 5000, req.Radius)
	assert.Equal(t, "hospital", req.Keyword)
}

func TestFallbackSuccess(t *testing.T) {
	svc := newFakeService(map[string]scriptedReply{"pharmacy": {n: 0}, "drugstore": {n: 2}})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "farmacia", brasilia)

	assert.Equal(t, Success, out.Kind)
	assert.Len(t, out.Places, 2)
	assert.Equal(t, 2, out.Calls)
	assert.Equal(t, "drugstore", out.Code)
	assert.Equal(t, []string{"pharmacy", "drugstore"}, svc.codes())
	for _, req := range svc.calls {
		assert.Equal(t, "farmacia", req.Keyword)
	}
}

func TestBothEmpty(t *testing.T) {
	svc := newFakeService(nil)
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "delegacia", brasilia)

	assert.Equal(t, Empty, out.Kind)
	assert.Empty(t, out.Places)
	assert.Equal(t, 2, out.Calls)
	assert.NoError(t, out.Err)
	assert.Equal(t, []string{"police", "local_government_office"}, svc.codes())
}

func TestNoThirdLevelFallback(t *testing.T) {
	// upa has four codes; only the first two may be tried
	svc := newFakeService(map[string]scriptedReply{"doctor": {n: 4}, "emergency_room": {n: 4}})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "upa", brasilia)

	assert.Equal(t, Empty, out.Kind)
	assert.Equal(t, 2, out.Calls)
	assert.Equal(t, []string{"hospital", "health"}, svc.codes())
}

func TestUnrecognisedCategoryUsesIdentity(t *testing.T) {
	svc := newFakeService(nil)
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "fire_station", brasilia)

	assert.Equal(t, Empty, out.Kind)
	assert.Equal(t, 1, out.Calls)
	assert.Equal(t, []string{"fire_station"}, svc.codes())
	assert.Equal(t, "fire_station", svc.calls[0].Keyword)
}

func TestTruncatesToMaxResultsInProviderOrder(t *testing.T) {
	svc := newFakeService(map[string]scriptedReply{"hospital": {n: 20}})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "hospital", brasilia)

	require.Equal(t, Success, out.Kind)
	require.Len(t, out.Places, DefaultMaxResults)
	for i, p := range out.Places {
		assert.Equal(t, fmt.Sprintf("hospital-%d", i), p.ID)
	}
}

func TestProviderErrorFallsBackAndIsMerged(t *testing.T) {
	denied := &places.StatusError{Provider: "fake", Status: places.StatusRequestDenied}
	svc := newFakeService(map[string]scriptedReply{
		"police":                  {status: places.StatusRequestDenied, err: denied},
		"local_government_office": {n: 0},
	})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "delegacia", brasilia)

	assert.Equal(t, Empty, out.Kind)
	assert.Equal(t, 2, out.Calls)
	assert.True(t, errors.Is(out.Err, places.ErrRequestDenied))
}

func TestOKStatusWithNoResultsIsEmpty(t *testing.T) {
	svc := newFakeService(map[string]scriptedReply{"fire_station": {n: 0, status: places.StatusOK}})
	o := NewOrchestrator(svc, Options{})

	out := o.Search(context.Background(), "fire_station", brasilia)
	assert.Equal(t, Empty, out.Kind)
}

func TestCustomOptions(t *testing.T) {
	svc := newFakeService(map[string]scriptedReply{"hospital": {n: 10}})
	o := NewOrchestrator(svc, Options{Radius: 1200, MaxResults: 4})

	out := o.Search(context.Background(), "hospital", brasilia)
	assert.Len(t, out.Places, 4)
	assert.Equal(t, 1200, svc.calls[0].Radius)
}

func TestCancelledContextSkipsFallback(t *testing.T) {
	svc := newFakeService(nil)
	o := NewOrchestrator(svc, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := o.Search(ctx, "hospital", brasilia)
	assert.Equal(t, Empty, out.Kind)
	assert.Equal(t, 1, out.Calls)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestAtMostTwoCallsForEveryCategory(t *testing.T) {
	for _, c := range Categories() {
		svc := newFakeService(nil)
		out := NewOrchestrator(svc, Options{}).Search(context.Background(), c.Key, brasilia)
		assert.LessOrEqual(t, out.Calls, 2, c.Key)
		assert.Equal(t, len(svc.calls), out.Calls, c.Key)
	}
}
