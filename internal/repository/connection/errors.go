package connection

import "errors"

var (
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotFound      = errors.New("connection not found")
)

// Sender delivers encoded messages to one client without blocking the caller.
type Sender interface {
	Send(msg any) error
	Close() error
}
