package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport        = errors.New("remote api unavailable")
	ErrUnauthorized     = errors.New("session not authorized")
	ErrValidation       = errors.New("invalid request")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyReviewed  = errors.New("request already reviewed")
	ErrNothingToSave    = errors.New("nothing to save")
	ErrAmbiguousSource  = errors.New("provide either a file or a url, not both")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// GenericErrorMessage is shown when a failure carries no readable message.
const GenericErrorMessage = "Something went wrong. Please try again."

// ErrorClass groups remote failures by how the console reacts to them.
type ErrorClass string

const (
	ClassTransport    ErrorClass = "transport"
	ClassUnauthorized ErrorClass = "unauthorized"
	ClassValidation   ErrorClass = "validation"
	ClassNotFound     ErrorClass = "not_found"
)

// APIError is a failure reported by (or while reaching) the remote API.
type APIError struct {
	Class   ErrorClass
	Status  int
	Message string
	Err     error
}

// ClassifyStatus maps a remote HTTP status to an error class.
func ClassifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ClassUnauthorized
	case status == http.StatusNotFound:
		return ClassNotFound
	case status >= 400 && status < 500:
		return ClassValidation
	default:
		return ClassTransport
	}
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Class)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("remote api %d: %s", e.Status, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the class sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *APIError) sentinel() error {
	switch e.Class {
	case ClassUnauthorized:
		return ErrUnauthorized
	case ClassValidation:
		return ErrValidation
	case ClassNotFound:
		return ErrNotFound
	default:
		return ErrTransport
	}
}

// ErrorMessage extracts a human-readable message for a notice. Server
// messages win; console-side validation errors are shown as-is; anything
// else falls back to GenericErrorMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericErrorMessage
	}
	for _, local := range []error{ErrValidation, ErrAlreadyReviewed, ErrNothingToSave, ErrAmbiguousSource, ErrUnsupportedImage} {
		if errors.Is(err, local) {
			return err.Error()
		}
	}
	return GenericErrorMessage
}
