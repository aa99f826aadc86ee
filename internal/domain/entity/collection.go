package entity

import (
	"time"
	"unicode/utf8"

	domainerrors "greencycle/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxRequestNotesLength caps the free-text notes on a request.
const MaxRequestNotesLength = 100

// Request holds the workflow half of a collection's status.
type Request struct {
	ID          uuid.UUID
	State       RequestState
	Notes       string
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Payment holds the monetary half of a collection's status.
type Payment struct {
	ID        uuid.UUID
	State     PaymentState
	Amount    decimal.Decimal
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Collection is a client's offer of recyclable material and its pickup workflow.
type Collection struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	Partner    PartnerAssignment
	MaterialID uuid.UUID
	Measure    Measure
	AddressID  uuid.UUID
	Request    Request
	Payment    Payment
	Images     []CollectionImage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCollectionParams carries the client-controlled fields of a new collection.
type NewCollectionParams struct {
	ClientID       uuid.UUID
	MaterialID     uuid.UUID
	AddressID      uuid.UUID
	Weight         *decimal.Decimal
	Quantity       *int
	Notes          string
	PaymentAmount  decimal.Decimal
	PaymentBalance decimal.Decimal
}

// NewCollection builds a pending collection with its request and payment.
// Initial states are fixed regardless of the caller.
func NewCollection(params NewCollectionParams, now time.Time) (*Collection, error) {
	measure, err := NewMeasure(params.Weight, params.Quantity)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Notes) > MaxRequestNotesLength {
		return nil, domainerrors.ErrValidationFailed.WithDetailsf("observações devem ter no máximo %d caracteres", MaxRequestNotesLength)
	}
	if params.PaymentAmount.IsNegative() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("valor do pagamento não pode ser negativo")
	}

	status := InitialStatus()
	c := &Collection{
		ID:         uuid.New(),
		ClientID:   params.ClientID,
		Partner:    Unassigned(),
		MaterialID: params.MaterialID,
		Measure:    measure,
		AddressID:  params.AddressID,
		Request: Request{
			ID:        uuid.New(),
			State:     status.Request,
			Notes:     params.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Payment: Payment{
			ID:        uuid.New(),
			State:     status.Payment,
			Amount:    params.PaymentAmount,
			Balance:   params.PaymentBalance,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	return c, nil
}

// Status returns the paired request and payment state.
func (c *Collection) Status() Status {
	return Status{
		Request:     c.Request.State,
		Payment:     c.Payment.State,
		FinalizedAt: c.Request.FinalizedAt,
	}
}

func (c *Collection) setStatus(s Status, now time.Time) {
	if c.Request.State != s.Request || c.Request.FinalizedAt != s.FinalizedAt {
		c.Request.UpdatedAt = now
	}
	if c.Payment.State != s.Payment {
		c.Payment.UpdatedAt = now
	}
	c.Request.State = s.Request
	c.Request.FinalizedAt = s.FinalizedAt
	c.Payment.State = s.Payment
	c.UpdatedAt = now
}

// Accept assigns partnerID to a pending collection.
// handlesMaterial reports whether the partner works with the collection's material.
func (c *Collection) Accept(partnerID uuid.UUID, handlesMaterial bool, now time.Time) error {
	if c.Partner.IsAssigned() {
		return domainerrors.ErrAlreadyAccepted
	}
	next, err := c.Status().Apply(ActionAccept, now)
	if err != nil {
		return err
	}
	if !handlesMaterial {
		return domainerrors.ErrPartnerCapabilityMismatch
	}

	c.setStatus(next, now)
	c.Partner = AssignedTo(partnerID)

	return nil
}

// MarkCollected records the pickup by the assigned partner.
func (c *Collection) MarkCollected(now time.Time) error {
	return c.apply(ActionMarkCollected, now)
}

// Cancel withdraws a collection nobody has accepted yet.
func (c *Collection) Cancel(now time.Time) error {
	return c.apply(ActionCancel, now)
}

// Finalize settles the payment and closes the request.
func (c *Collection) Finalize(now time.Time) error {
	return c.apply(ActionFinalize, now)
}

func (c *Collection) apply(action Action, now time.Time) error {
	next, err := c.Status().Apply(action, now)
	if err != nil {
		return err
	}
	c.setStatus(next, now)

	return nil
}

// CheckInvariants verifies the structural rules every stored collection must satisfy.
func (c *Collection) CheckInvariants() error {
	if err := c.Measure.Validate(); err != nil {
		return err
	}

	switch c.Request.State {
	case RequestPending, RequestCancelled:
		if c.Partner.IsAssigned() {
			return domainerrors.ErrValidationFailed.WithDetailsf("coleta em estado %s não pode ter parceiro", c.Request.State)
		}
	case RequestAccepted, RequestCollected, RequestFinalized:
		if !c.Partner.IsAssigned() {
			return domainerrors.ErrValidationFailed.WithDetailsf("coleta em estado %s exige parceiro", c.Request.State)
		}
	default:
		return domainerrors.ErrValidationFailed.WithDetailsf("estado de solicitação desconhecido: %s", c.Request.State)
	}

	return nil
}

// IsOwnedByClient reports whether clientID created the collection.
func (c *Collection) IsOwnedByClient(clientID uuid.UUID) bool {
	return c.ClientID == clientID
}

// CollectionSummary is the listing view of a pending collection.
type CollectionSummary struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	MaterialID    uuid.UUID
	MaterialName  string
	Measure       Measure
	AddressID     uuid.UUID
	AddressLine   string
	Latitude      float64
	Longitude     float64
	Notes         string
	PaymentAmount decimal.Decimal
	CreatedAt     time.Time
	// DistanceMeters is set only when the caller supplied an origin.
	DistanceMeters *float64
}
