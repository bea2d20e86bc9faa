// Package places defines the nearby-search contract consumed by the search
// orchestrator and the provider adapters that implement it.
package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/kass/emergency-locator/pkg/models"
)

// Status is the closed set of outcomes a provider can report for a search.
// Provider-native status values are translated at the adapter boundary.
type Status int

const (
	StatusUnknownError Status = iota
	StatusOK
	StatusZeroResults
	StatusOverQueryLimit
	StatusRequestDenied
	StatusInvalidRequest
)

var statusNames = map[Status]string{
	StatusUnknownError:   "UNKNOWN_ERROR",
	StatusOK:             "OK",
	StatusZeroResults:    "ZERO_RESULTS",
	StatusOverQueryLimit: "OVER_QUERY_LIMIT",
	StatusRequestDenied:  "REQUEST_DENIED",
	StatusInvalidRequest: "INVALID_REQUEST",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus translates a provider status string. Unrecognised values map to
// StatusUnknownError.
func ParseStatus(s string) Status {
	for status, name := range statusNames {
		if name == s {
			return status
		}
	}
	return StatusUnknownError
}

// ErrRequestDenied marks credential or authorisation failures. The UI treats
// it as a map initialisation failure.
var ErrRequestDenied = errors.New("places: request denied")

// Request describes a nearby search
type Request struct {
	Location models.Position
	// Radius in metres
	Radius int
	// Keyword is a relevance hint; it never changes the type filter
	Keyword string
	// Type is the provider category code
	Type string
}

// Response is the result of a nearby search in provider order
type Response struct {
	Status  Status
	Results []models.PlaceResult
}

// OK reports whether the response carries at least one usable result
func (r Response) OK() bool {
	return r.Status == StatusOK && len(r.Results) > 0
}

// Service performs nearby searches
type Service interface {
	NearbySearch(ctx context.Context, req Request) (Response, error)
}

// StatusError is returned when a provider answers with a non-OK status
type StatusError struct {
	Provider string
	Status   Status
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestDenied && e.Status == StatusRequestDenied
}
