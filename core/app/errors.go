package app

import (
	"errors"
	"fmt"
)

// Kind classifies application errors.
type Kind string

// ServerStart covers every failure between Serve being called and the server
// stopping: virtual host configuration, path registration, binding and serving.
const ServerStart Kind = "ServerStart"

var (
	// ErrAlreadyServed is wrapped when Serve is called on an App that has already served.
	ErrAlreadyServed = errors.New("app has already been served")
	// ErrNilHandler is wrapped when Serve is called without a handler.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrNoResponse is returned to the runtime when a handler returns neither a response nor an error.
	ErrNoResponse = errors.New("handler returned no response")
)

// Error is the single error type surfaced by App.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Failed to start server: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func serverStart(err error) *Error {
	return &Error{Kind: ServerStart, Message: err.Error(), Err: err}
}
