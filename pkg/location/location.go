// Package location supplies the device position to a session.
//
// Providers report failures as *Error values carrying a closed Kind, so callers
// never inspect provider-native error shapes.
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/kass/emergency-locator/pkg/models"
)

// Kind classifies a location failure
type Kind int

const (
	Unknown Kind = iota
	PermissionDenied
	PositionUnavailable
	Timeout
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission-denied"
	case PositionUnavailable:
		return "position-unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a classified location failure
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Err)
	}
	return "location " + e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify returns the Kind of err. Context deadlines map to Timeout; any
// other unclassified error is Unknown.
func Classify(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return Unknown
}

// Provider supplies the current position once per call
type Provider interface {
	CurrentPosition(ctx context.Context) (models.Position, error)
}

// Permission mirrors the states a host can report for location access
type Permission int

const (
	PermissionPrompt Permission = iota
	PermissionGranted
	PermissionRefused
)

// PermissionChecker is implemented by providers that can report whether
// access was already granted without prompting
type PermissionChecker interface {
	Permission(ctx context.Context) Permission
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context) (models.Position, error)

func (f ProviderFunc) CurrentPosition(ctx context.Context) (models.Position, error) {
	return f(ctx)
}
