package client

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// ErrTokenExpired is returned when the server answers with status 498.
var ErrTokenExpired = errors.New("token is expired")

// APIError is a non-2xx answer carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}
