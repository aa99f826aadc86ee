package service

import (
	"context"
	"time"
)

// ActionCreated is the action of the event published when a collection is offered.
// Lifecycle transitions use the entity.Action names.
const ActionCreated = "create"

// CollectionEvent is published after a lifecycle transition commits.
type CollectionEvent struct {
	RequestID     string    `json:"request_id,omitempty"` // For distributed tracing
	CollectionID  string    `json:"collection_id"`
	Action        string    `json:"action"`
	RequestState  string    `json:"request_state"`
	PaymentState  string    `json:"payment_state"`
	ClientID      string    `json:"client_id"`
	PartnerID     string    `json:"partner_id,omitempty"`
	MaterialID    string    `json:"material_id"`
	RatingCreated bool      `json:"rating_created,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishCollectionEvent publishes a committed lifecycle transition.
	PublishCollectionEvent(ctx context.Context, event *CollectionEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
