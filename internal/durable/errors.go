package durable

import (
	"errors"
	"fmt"
)

var (
	// ErrTooLarge is returned when a document exceeds the store's size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
	// ErrUnknownDocument is returned for names not registered with the store.
	ErrUnknownDocument = errors.New("unknown document")
	// ErrClosed is returned by SaveAsync after Close.
	ErrClosed = errors.New("store closed")
)

// Error records a failed filesystem step.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
