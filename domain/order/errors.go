package order

import (
	"errors"

	"watchbox/domain/shared"
)

var (
	ErrMissingProduct  = errors.New("product selection is required")
	ErrUnknownProduct  = errors.New("product is not in the catalog")
	ErrInvalidFullName = errors.New("full name must have at least 2 characters")
	ErrInvalidPhone    = errors.New("phone must contain between 9 and 13 digits")
	ErrMissingWilaya   = errors.New("wilaya is required")
	ErrMissingBaladiya = errors.New("baladiya is required")
	ErrInvalidDelivery = errors.New("delivery option must be desk or home")
)

// FieldError a validation failure bound to one form field.
// errors.Is matches both the field sentinel and shared.ErrInvalidInput.
type FieldError struct {
	sentinel error
	field    Field
	stack    []uintptr
}

func newFieldError(field Field, sentinel error) *FieldError {
	return &FieldError{
		sentinel: sentinel,
		field:    field,
		stack:    shared.CaptureStack(3),
	}
}

func (e *FieldError) Error() string {
	return string(e.field) + ": " + e.sentinel.Error()
}

func (e *FieldError) Unwrap() []error {
	return []error{e.sentinel, shared.ErrInvalidInput}
}

func (e *FieldError) Field() Field {
	return e.field
}

// Stack 实现 shared.Stacker 接口
func (e *FieldError) Stack() []string {
	return shared.FormatStack(e.stack)
}
