package api

import (
	"errors"
	"fmt"
)

// TransportError is a connection or protocol failure talking to the service.
// It is never retried.
type TransportError struct {
	Method     string
	Route      string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := e.Body
		if msg == "" {
			msg = "empty response"
		}
		return fmt.Sprintf("%s %s: HTTP %d - %s", e.Method, e.Route, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Route, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// DecodeError wraps a response body that could not be parsed.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
