package event

import (
	"log/slog"

	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// Dispatcher is the public surface of the bus. Listeners receive it so they
// can dispatch further events or change registrations.
type Dispatcher interface {
	Dispatch(name string, e Event) (Event, error)

	AddListener(name string, listener any, priority int)
	RemoveListener(name string, listener any)
	AddSubscriber(s Subscriber)
	RemoveSubscriber(s Subscriber)

	Listeners(name string) []any
	AllListeners() map[string][]any
	HasListeners(name string) bool
	HasAnyListeners() bool
	ListenerPriority(name string, listener any) (int, bool)
}

// Bus maps event names to priority-ordered listener lists.
//
// A Bus is meant to be owned by one goroutine. Dispatch is a plain nested
// call: listeners may dispatch again on the same bus, and there is no lock
// to deadlock on.
type Bus struct {
	lists map[string]*listenerList

	hook      Hook
	log       *slog.Logger
	onWarning func(error)
}

var _ Dispatcher = (*Bus)(nil)

// Option configures a Bus at construction.
type Option func(*Bus)

// WithHook installs h as the invocation loop. The hook is fixed for the
// lifetime of the bus.
func WithHook(h Hook) Option {
	return func(b *Bus) {
		if h != nil {
			b.hook = h
		}
	}
}

// WithLogger sets the logger used for listener warnings.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// WithWarningHandler is called, after logging, for every listener that
// could not be invoked.
func WithWarningHandler(fn func(error)) Option {
	return func(b *Bus) {
		b.onWarning = fn
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		lists: make(map[string]*listenerList),
		hook:  CallListeners,
		log:   logger.L,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddListener registers listener for name. Higher priorities run first;
// equal priorities run in registration order. The listener is not checked
// here: a value that cannot be invoked is reported when it would run.
func (b *Bus) AddListener(name string, listener any, priority int) {
	l, ok := b.lists[name]
	if !ok {
		l = &listenerList{}
		b.lists[name] = l
	}
	l.add(listener, priority)
}

// Listen registers listener for name with priority 0.
func (b *Bus) Listen(name string, listener any) {
	b.AddListener(name, listener, 0)
}

// RemoveListener removes the first entry for name matching listener.
// Unknown names and listeners are ignored.
func (b *Bus) RemoveListener(name string, listener any) {
	l, ok := b.lists[name]
	if !ok {
		return
	}
	if l.remove(listener) && l.len() == 0 {
		delete(b.lists, name)
	}
}

// Listeners returns the listeners of name in call order.
func (b *Bus) Listeners(name string) []any {
	l, ok := b.lists[name]
	if !ok {
		return []any{}
	}
	return listenersOf(l)
}

// AllListeners returns the listeners of every event that has any.
func (b *Bus) AllListeners() map[string][]any {
	out := make(map[string][]any, len(b.lists))
	for name, l := range b.lists {
		if l.len() > 0 {
			out[name] = listenersOf(l)
		}
	}
	return out
}

func listenersOf(l *listenerList) []any {
	sorted := l.sorted()
	out := make([]any, len(sorted))
	for i, e := range sorted {
		out[i], _ = canonical(e.listener)
	}
	return out
}

// HasListeners reports whether name has at least one listener. Lazy
// listeners are not resolved.
func (b *Bus) HasListeners(name string) bool {
	l, ok := b.lists[name]
	return ok && l.len() > 0
}

// HasAnyListeners reports whether any event has a listener.
func (b *Bus) HasAnyListeners() bool {
	for _, l := range b.lists {
		if l.len() > 0 {
			return true
		}
	}
	return false
}

// ListenerPriority returns the priority of the first entry for name
// matching listener.
func (b *Bus) ListenerPriority(name string, listener any) (int, bool) {
	l, ok := b.lists[name]
	if !ok {
		return 0, false
	}
	i := l.index(listener)
	if i < 0 {
		return 0, false
	}
	return l.entries[i].priority, true
}

// Dispatch delivers e to the listeners of name and returns it. A nil e is
// replaced by NewEvent(). The returned error is non-nil only when a
// listener failed or panicked; the remaining listeners were not called.
func (b *Bus) Dispatch(name string, e Event) (Event, error) {
	if e == nil {
		e = NewEvent()
	}
	e.SetName(name)

	prev := e.Dispatcher()
	e.SetDispatcher(b)
	defer e.SetDispatcher(prev)

	var snapshot []*Entry
	if l, ok := b.lists[name]; ok {
		snapshot = l.snapshot()
	}

	return e, b.hook(b, snapshot, name, e)
}
