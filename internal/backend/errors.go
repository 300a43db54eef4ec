package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx answer from the backend. Message carries the backend's own explanation
// (the "detail" field when present) so it can be shown to the user verbatim.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// NetworkError means the request never produced an HTTP answer.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusCode returns the backend status carried by err, or 0 when err is not a backend rejection.
func StatusCode(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsRejection reports a 4xx answer: the backend understood the request and refused it.
func IsRejection(err error) bool {
	code := StatusCode(err)
	return code >= 400 && code < 500
}
