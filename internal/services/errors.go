package services

import "github.com/pkg/errors"

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrEmailTaken   = errors.New("email already registered")
	ErrNoSession    = errors.New("no active session")
	ErrNotFound     = errors.New("not found")
	ErrNotOwner     = errors.New("not the owner of this product")
	ErrUploadFailed = errors.New("upload failed")
)

// FormError carries a message that is safe to show next to the form.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string { return e.Message }

func formErr(field, msg string) error { return &FormError{Field: field, Message: msg} }

// AsFormError reports whether err is (or wraps) a FormError.
func AsFormError(err error) (*FormError, bool) {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
