// Package validator adapts go-playground/validator to echo's Validator hook.
package validator

import (
	domainerrors "techigem/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

type echoValidator struct {
	validate *validator.Validate
}

// New builds the validator echo uses for c.Validate calls.
func New() *echoValidator {
	return &echoValidator{validate: validator.New()}
}

// Validate runs struct tag validation and maps failures onto the shared
// validation error so the error middleware renders a 400.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
