package event

import "runtime/debug"

// Hook runs the invocation loop of one dispatch. It receives the sorted
// snapshot of listeners for name and must stop as soon as e reports
// IsPropagationStopped. Each listener is invoked through b.Call.
//
// CallListeners is the default. A decorator supplies its own Hook with
// WithHook, typically wrapping b.Call with timing or tracing.
type Hook func(b *Bus, listeners []*Entry, name string, e Event) error

// CallListeners is the default Hook.
func CallListeners(b *Bus, listeners []*Entry, name string, e Event) error {
	for _, entry := range listeners {
		if e.IsPropagationStopped() {
			break
		}
		if err := b.Call(entry, name, e); err != nil {
			return err
		}
	}
	return nil
}

// Call invokes a single entry. A listener that cannot be invoked is
// reported as a warning and Call returns nil, so the loop carries on. A
// returned error comes back as *ListenerError and a panic as *PanicError;
// both should end the loop.
func (b *Bus) Call(entry *Entry, name string, e Event) (err error) {
	desc := Describe(entry.listener)

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Event: name, Listener: desc, Value: r, Stack: debug.Stack()}
		}
	}()

	fn, rerr := resolve(entry.listener, e, b)
	if rerr != nil {
		b.warn(&NotCallableError{Event: name, Listener: desc, Reason: rerr.Error()})
		return nil
	}

	if lerr := fn(e, name, b); lerr != nil {
		return &ListenerError{Event: name, Listener: Describe(entry.listener), Err: lerr}
	}
	return nil
}

func (b *Bus) warn(err *NotCallableError) {
	b.log.Warn("event: listener is not callable",
		"event", err.Event,
		"listener", err.Listener,
		"error", err.Reason,
	)
	if b.onWarning != nil {
		b.onWarning(err)
	}
}
