package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrNotCallable is reported when a registered listener cannot be invoked.
	ErrNotCallable = errors.New("event: listener is not callable")

	// ErrArgumentNotFound is returned by GenericEvent.Argument for a missing key.
	ErrArgumentNotFound = errors.New("event: argument not found")

	// ErrListenerPanic matches every PanicError via errors.Is.
	ErrListenerPanic = errors.New("event: listener panicked")

	// ErrInvalidDescriptor matches every DescriptorError via errors.Is.
	ErrInvalidDescriptor = errors.New("event: invalid subscriber descriptor")
)

// ArgumentNotFoundError names the event and the key that was looked up.
type ArgumentNotFoundError struct {
	Event string
	Key   string
}

func (e *ArgumentNotFoundError) Error() string {
	return fmt.Sprintf("event: argument %q not found in event %q", e.Key, e.Event)
}

// Is allows errors.Is to match ArgumentNotFoundError with ErrArgumentNotFound.
func (e *ArgumentNotFoundError) Is(target error) bool {
	return target == ErrArgumentNotFound
}

// NotCallableError describes a listener that was skipped during a dispatch.
type NotCallableError struct {
	Event    string
	Listener string
	Reason   string
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("event: listener %s for %q is not callable: %s", e.Listener, e.Event, e.Reason)
}

func (e *NotCallableError) Is(target error) bool {
	return target == ErrNotCallable
}

// ListenerError wraps an error returned by a listener. It aborts the dispatch.
type ListenerError struct {
	Event    string
	Listener string
	Err      error
}

func (e *ListenerError) Error() string {
	return "event: listener " + e.Listener + " failed on " + e.Event + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic raised by a listener. It aborts the dispatch.
type PanicError struct {
	Event    string
	Listener string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event: listener %s panicked on %s: %v", e.Listener, e.Event, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// DescriptorError reports a subscriber descriptor entry that was skipped.
type DescriptorError struct {
	Subscriber string
	Event      string
	Value      any
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("event: subscriber %s: unsupported descriptor %T for %q", e.Subscriber, e.Value, e.Event)
}

func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
