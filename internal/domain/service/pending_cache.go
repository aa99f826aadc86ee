package service

import (
	"context"

	"greencycle/internal/domain/entity"

	"github.com/google/uuid"
)

// PendingLookup is the result of reading a partner's cached pending listing.
type PendingLookup struct {
	Items []*entity.CollectionSummary
	Hit   bool
	// Version identifies the invalidation generation seen by the read.
	// It must be handed back to Set unchanged.
	Version string
}

// PendingCache caches the pending-collection listing of each partner.
// A miss returns Hit=false and no error.
type PendingCache interface {
	Get(ctx context.Context, partnerID uuid.UUID) (*PendingLookup, error)
	// Set stores items only if no invalidation touched the partner since the Get that returned version.
	Set(ctx context.Context, partnerID uuid.UUID, version string, items []*entity.CollectionSummary) error
	// InvalidatePartners drops the listings of the given partners.
	InvalidatePartners(ctx context.Context, partnerIDs ...uuid.UUID) error
	// InvalidateAll drops every cached listing.
	InvalidateAll(ctx context.Context) error
}
