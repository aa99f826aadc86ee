// Package validator adapts go-playground/validator to echo and registers
// the Brazilian document and decimal rules used by request bodies.
package validator

import (
	"reflect"
	"strings"

	"greencycle/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}

		return nil
	}, decimal.Decimal{})

	mustRegister(v, "cpf", func(fl validator.FieldLevel) bool {
		_, err := util.NormalizeCPF(fl.Field().String())

		return err == nil
	})
	mustRegister(v, "cnpj", func(fl validator.FieldLevel) bool {
		_, err := util.NormalizeCNPJ(fl.Field().String())

		return err == nil
	})
	mustRegister(v, "cep", func(fl validator.FieldLevel) bool {
		_, err := util.NormalizeCEP(fl.Field().String())

		return err == nil
	})
	mustRegister(v, "phone_br", func(fl validator.FieldLevel) bool {
		return util.IsValidPhoneBR(fl.Field().String())
	})
	mustRegister(v, "decimal_positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())

		return err == nil && d.IsPositive()
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(errors.Wrapf(err, "register validation %s", tag))
	}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// FieldErrors maps each failing field to the rule it broke.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}

	return fields
}
