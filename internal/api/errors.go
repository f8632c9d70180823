package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches any *Error with a 404 status via errors.Is.
var ErrNotFound = errors.New("not found")

// Error is a non-success response from the backend. Message is the
// human-readable text extracted from the response.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// NetworkError means the request never reached the backend or no response came back.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports required fields missing before a request is dispatched.
type ValidationError struct {
	Op     string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Op, strings.Join(e.Fields, ", "))
}

// Message returns the best human-readable text for err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsAlreadyJoined reports whether err is the backend's duplicate-join condition.
func IsAlreadyJoined(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "already joined")
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
