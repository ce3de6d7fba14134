package geolocation

import (
	"context"
	"errors"

	"github.com/evyataryagoni/iptracker/internal/models"
)

var (
	// ErrBadStatus is returned when the API answers with a non-2xx status
	ErrBadStatus = errors.New("geolocation API returned an error status")

	// ErrMalformedResponse is returned when the body cannot be mapped into a LookupResult
	ErrMalformedResponse = errors.New("malformed geolocation response")
)

// Provider resolves IP addresses and domains to a LookupResult.
// Implementations must return either a fully populated result or an error,
// never a partially populated record.
type Provider interface {
	// Lookup resolves the given IP address or domain
	Lookup(ctx context.Context, query string) (*models.LookupResult, error)

	// LookupSelf resolves the caller's own public IP address
	LookupSelf(ctx context.Context) (*models.LookupResult, error)
}
