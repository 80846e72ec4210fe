package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch or poll chain failed.
type ErrorKind string

const (
	// KindNetwork covers transport failures and non-success HTTP statuses.
	KindNetwork ErrorKind = "network"
	// KindProtocol covers responses that do not match the expected shape.
	KindProtocol ErrorKind = "protocol"
	// KindBackend covers failures the backend reported explicitly.
	KindBackend ErrorKind = "backend"
	// KindTimedOut is returned when the poll budget runs out.
	KindTimedOut ErrorKind = "timed_out"
)

// Error is a kind-aware failure with the operation that produced it.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Op         string    `json:"op"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	Err        error     `json:"-"`
}

// Error formats failures for logs and UI.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the kind of a backend error, or KindNetwork for anything else.
func KindOf(err error) ErrorKind {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Kind
	}
	return KindNetwork
}

// UserMessage returns the text shown next to the error icon.
func UserMessage(err error) string {
	var backendErr *Error
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "An error occurred"
}
