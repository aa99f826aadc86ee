package entity

import (
	domainerrors "greencycle/internal/domain/errors"

	"github.com/shopspring/decimal"
)

// Measure is the amount of material in a collection.
// Exactly one of Weight or Quantity is set.
type Measure struct {
	Weight   *decimal.Decimal
	Quantity *int
}

// NewMeasure validates and builds a Measure from optional weight and quantity.
func NewMeasure(weight *decimal.Decimal, quantity *int) (Measure, error) {
	m := Measure{Weight: weight, Quantity: quantity}
	if err := m.Validate(); err != nil {
		return Measure{}, err
	}

	return m, nil
}

// WeightMeasure builds a weight-based Measure.
func WeightMeasure(w decimal.Decimal) Measure {
	return Measure{Weight: &w}
}

// QuantityMeasure builds a unit-count Measure.
func QuantityMeasure(q int) Measure {
	return Measure{Quantity: &q}
}

// Validate enforces that exactly one positive amount is present.
func (m Measure) Validate() error {
	switch {
	case m.Weight != nil && m.Quantity != nil:
		return domainerrors.ErrValidationFailed.WithDetails("informe apenas peso ou quantidade, não ambos")
	case m.Weight == nil && m.Quantity == nil:
		return domainerrors.ErrValidationFailed.WithDetails("informe peso ou quantidade")
	case m.Weight != nil && !m.Weight.IsPositive():
		return domainerrors.ErrValidationFailed.WithDetails("peso deve ser maior que zero")
	case m.Quantity != nil && *m.Quantity <= 0:
		return domainerrors.ErrValidationFailed.WithDetails("quantidade deve ser maior que zero")
	}

	return nil
}

// IsWeight reports whether the measure is weight-based.
func (m Measure) IsWeight() bool {
	return m.Weight != nil
}
