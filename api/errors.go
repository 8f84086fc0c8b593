package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport wraps network-level failures.
	ErrTransport = errors.New("backend unreachable")

	// ErrDecode wraps malformed response bodies.
	ErrDecode = errors.New("malformed backend response")

	// ErrBusiness is the target of every [*StatusError].
	ErrBusiness = errors.New("backend rejected request")

	// ErrInvalidRequest is returned before any I/O when a request cannot be built.
	ErrInvalidRequest = errors.New("invalid request")
)

// StatusError carries the backend's verdict on a rejected request.
type StatusError struct {
	// HTTPStatus is the response status code.
	HTTPStatus int
	// Status is the envelope status; zero if the body had none.
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.HTTPStatus)
	}
	if e.Status != 0 && e.Status != e.HTTPStatus {
		return fmt.Sprintf("%s (http %d, status %d)", msg, e.HTTPStatus, e.Status)
	}
	return fmt.Sprintf("%s (http %d)", msg, e.HTTPStatus)
}

func (e *StatusError) Unwrap() error { return ErrBusiness }

// Unauthorized reports whether the backend refused the credential.
func (e *StatusError) Unauthorized() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.Status == http.StatusUnauthorized
}

// Message extracts the most user-presentable text from err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
