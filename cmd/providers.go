package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/kass/emergency-locator/pkg/config"
	"github.com/kass/emergency-locator/pkg/location"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/kass/emergency-locator/pkg/postgis"
	"github.com/kass/emergency-locator/pkg/search"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newPlacesService builds the configured places backend. The closer releases
// any connection the backend holds.
func newPlacesService(ctx context.Context, c *config.Config) (places.Service, io.Closer, error) {
	switch c.Provider {
	case config.ProviderGoogle:
		g, err := places.NewGoogle(c.Google.APIKey,
			places.WithBaseURL(c.Google.BaseURL),
			places.WithVerbose(verbose),
		)
		if err != nil {
			return nil, nil, err
		}
		return g, nopCloser{}, nil

	case config.ProviderLocal:
		l, err := places.OpenLocal(c.Local.IndexFile, verbose)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local index (run load first): %w", err)
		}
		return l, nopCloser{}, nil

	case config.ProviderPostGIS:
		store, err := postgis.Open(ctx, postgis.Options(c.PostGIS))
		if err != nil {
			return nil, nil, err
		}
		store.SetVerbose(verbose)
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", c.Provider)
}

func newOrchestrator(service places.Service, c *config.Config) *search.Orchestrator {
	return search.NewOrchestrator(service, search.Options{
		Radius:     c.Search.RadiusMeters,
		MaxResults: c.Search.MaxResults,
		Verbose:    verbose,
	})
}

// newLocator builds the configured location provider, bounded by the configured timeout
func newLocator(c *config.Config) (location.Provider, error) {
	var p location.Provider
	switch c.Location.Source {
	case config.LocationStatic:
		s, err := location.NewStatic(c.Location.Lat, c.Location.Lon)
		if err != nil {
			return nil, err
		}
		p = s
	case config.LocationIPAPI:
		p = location.NewIPAPI(c.Location.IPAPIURL, http.DefaultClient)
	default:
		return nil, fmt.Errorf("unknown location source %q", c.Location.Source)
	}
	if verbose {
		log.Printf("Location source: %s (timeout %s)", c.Location.Source, c.Location.Timeout())
	}
	return location.WithTimeout(p, c.Location.Timeout()), nil
}
