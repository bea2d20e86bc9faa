// Package search runs the category search protocol: a primary nearby search
// with the category's first provider code and, when that yields nothing, a
// single fallback search with the second code.
package search

import (
	"context"
	"log"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
)

const (
	DefaultRadius     = 5000
	DefaultMaxResults = 15
)

// maxAttempts bounds the provider calls per search: primary plus one fallback
const maxAttempts = 2

// Kind is the terminal state of a search
type Kind int

const (
	Empty Kind = iota
	Success
)

func (k Kind) String() string {
	if k == Success {
		return "success"
	}
	return "empty"
}

// Outcome is the single result of one search
type Outcome struct {
	Kind     Kind
	Category string
	Places   []models.PlaceResult
	// Code is the provider code that produced a Success
	Code string
	// Calls is the number of provider calls issued
	Calls int
	// Err is the last non-nil provider error. Failures and empty results are
	// reported to the user the same way; Err is for logging and for detecting
	// credential failures.
	Err error
}

// Options tunes an Orchestrator
type Options struct {
	Radius     int
	MaxResults int
	Verbose    bool
}

// Orchestrator dispatches category searches to a places.Service. It holds no
// mutable state and is safe for concurrent use.
type Orchestrator struct {
	service places.Service
	opts    Options
}

// NewOrchestrator creates an Orchestrator; zero options take the defaults
func NewOrchestrator(service places.Service, opts Options) *Orchestrator {
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Orchestrator{service: service, opts: opts}
}

// Search runs the protocol for category around pos and returns exactly one Outcome
func (o *Orchestrator) Search(ctx context.Context, category string, pos models.Position) Outcome {
	codes := Codes(category)
	out := Outcome{Kind: Empty, Category: category}

	for attempt := 0; attempt < maxAttempts && attempt < len(codes); attempt++ {
		if attempt > 0 && ctx.Err() != nil {
			out.Err = ctx.Err()
			break
		}

		code := codes[attempt]
		req := places.Request{
			Location: pos,
			Radius:   o.opts.Radius,
			Keyword:  category,
			Type:     code,
		}

		resp, err := o.service.NearbySearch(ctx, req)
		out.Calls++

		if err == nil && resp.OK() {
			results := resp.Results
			if len(results) > o.opts.MaxResults {
				results = results[:o.opts.MaxResults]
			}
			out.Kind = Success
			out.Code = code
			out.Places = append([]models.PlaceResult(nil), results...)
			out.Err = nil
			if o.opts.Verbose {
				log.Printf("search: found %d results for %s (code %s, attempt %d)", len(resp.Results), category, code, attempt+1)
			}
			return out
		}

		if err != nil {
			out.Err = err
			log.Printf("search: %s with code %s failed: %v", category, code, err)
		} else {
			log.Printf("search: no results for %s with code %s: %s", category, code, resp.Status)
		}
	}

	return out
}
