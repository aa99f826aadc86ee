// Package entity contains the core business objects of the project.
package entity

import (
	"fmt"
	"time"

	domainerrors "greencycle/internal/domain/errors"
)

// RequestState is the workflow state of a collection request.
type RequestState string

const (
	RequestPending   RequestState = "pending"
	RequestAccepted  RequestState = "accepted"
	RequestCollected RequestState = "collected"
	RequestCancelled RequestState = "cancelled"
	RequestFinalized RequestState = "finalized"
)

// String returns the string representation of the RequestState.
func (s RequestState) String() string {
	return string(s)
}

// IsValid checks if the RequestState is a valid value.
func (s RequestState) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestCollected, RequestCancelled, RequestFinalized:
		return true
	default:
		return false
	}
}

// PaymentState is the monetary state of a collection payment.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentPaid      PaymentState = "paid"
	PaymentCancelled PaymentState = "cancelled"
)

// String returns the string representation of the PaymentState.
func (s PaymentState) String() string {
	return string(s)
}

// IsValid checks if the PaymentState is a valid value.
func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCancelled:
		return true
	default:
		return false
	}
}

// Action names a lifecycle transition.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionMarkCollected Action = "mark_collected"
	ActionCancel        Action = "cancel"
	ActionFinalize      Action = "finalize"
)

// String returns the string representation of the Action.
func (a Action) String() string {
	return string(a)
}

// Status pairs the request and payment states of one collection.
// Both halves only ever move together through Apply.
type Status struct {
	Request     RequestState
	Payment     PaymentState
	FinalizedAt *time.Time
}

// InitialStatus is the state every collection is created in.
func InitialStatus() Status {
	return Status{Request: RequestPending, Payment: PaymentPending}
}

// String renders the status as request/payment.
func (s Status) String() string {
	return fmt.Sprintf("request=%s payment=%s", s.Request, s.Payment)
}

// IsSettled reports whether the collection was finalized and paid.
func (s Status) IsSettled() bool {
	return s.Request == RequestFinalized && s.Payment == PaymentPaid
}

// transition describes one row of the lifecycle table.
// An empty fromPayment accepts any payment state; an empty toPayment leaves it unchanged.
type transition struct {
	fromRequest  RequestState
	fromPayment  PaymentState
	toRequest    RequestState
	toPayment    PaymentState
	setFinalized bool
}

var transitions = map[Action]transition{
	ActionAccept: {
		fromRequest: RequestPending,
		toRequest:   RequestAccepted,
	},
	ActionMarkCollected: {
		fromRequest: RequestAccepted,
		toRequest:   RequestCollected,
	},
	ActionCancel: {
		fromRequest: RequestPending,
		fromPayment: PaymentPending,
		toRequest:   RequestCancelled,
		toPayment:   PaymentCancelled,
	},
	ActionFinalize: {
		fromRequest:  RequestCollected,
		fromPayment:  PaymentPending,
		toRequest:    RequestFinalized,
		toPayment:    PaymentPaid,
		setFinalized: true,
	},
}

func (t transition) expected() string {
	if t.fromPayment == "" {
		return fmt.Sprintf("request=%s", t.fromRequest)
	}

	return fmt.Sprintf("request=%s payment=%s", t.fromRequest, t.fromPayment)
}

// Apply returns the status reached by running action from s.
// s itself is never modified; a failed precondition yields a TransitionError.
func (s Status) Apply(action Action, now time.Time) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return s, domainerrors.NewTransitionError(action.String(), "known action", "unknown action")
	}

	if s.Request != t.fromRequest || (t.fromPayment != "" && s.Payment != t.fromPayment) {
		return s, domainerrors.NewTransitionError(action.String(), t.expected(), s.String())
	}

	next := Status{
		Request:     t.toRequest,
		Payment:     s.Payment,
		FinalizedAt: s.FinalizedAt,
	}
	if t.toPayment != "" {
		next.Payment = t.toPayment
	}
	if t.setFinalized {
		at := now
		next.FinalizedAt = &at
	}

	return next, nil
}

// CanApply reports whether action is allowed from s.
func (s Status) CanApply(action Action) bool {
	_, err := s.Apply(action, time.Time{})

	return err == nil
}
