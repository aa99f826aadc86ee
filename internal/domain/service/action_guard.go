package service

import (
	"context"

	"greencycle/internal/errors"

	"github.com/google/uuid"
)

// ErrGuardBusy is returned when another caller holds the guard.
var ErrGuardBusy = errors.New("action guard busy")

// ActionGuard serialises lifecycle actions on one collection ahead of the database.
type ActionGuard interface {
	// Acquire takes the guard for collectionID and returns its release func.
	Acquire(ctx context.Context, collectionID uuid.UUID) (release func(), err error)
}
