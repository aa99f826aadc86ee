package service

import (
	"context"

	"greencycle/internal/errors"

	"github.com/paulmach/orb"
)

// ErrLocationNotFound is returned when the geocoder has no match for an address.
var ErrLocationNotFound = errors.New("location not found")

// Geocoder resolves a free-text address to a position.
type Geocoder interface {
	// Geocode returns the position of address, or ErrLocationNotFound.
	Geocode(ctx context.Context, address string) (orb.Point, error)
}
