// Package trace records what happens during dispatches: which listeners ran,
// how long they took, which were skipped, and which events nobody listened
// to. It plugs into the bus through the Hook seam:
//
//	tracer := trace.New(trace.WithMetrics(true))
//	bus := event.NewBus(tracer.Options()...)
//
// A Tracer belongs to the bus it was installed on and shares its
// single-goroutine ownership.
package trace

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
	"github.com/shashiranjanraj/kashvi-events/pkg/metrics"
)

// Skip reasons.
const (
	ReasonStopped     = "propagation stopped"
	ReasonNotCallable = "not callable"
)

// Call is one listener invocation.
type Call struct {
	DispatchID string
	Event      string
	Listener   string
	Priority   int
	Duration   time.Duration

	// StoppedPropagation is set on the listener that stopped the dispatch.
	StoppedPropagation bool

	// Err is the *event.ListenerError or *event.PanicError that ended the
	// dispatch, if any.
	Err error
}

// Skip is a listener that was reached by a dispatch but did not run.
type Skip struct {
	DispatchID string
	Event      string
	Listener   string
	Priority   int
	Reason     string
}

// Listener is a registered listener as reported by NotCalled.
type Listener struct {
	Event    string
	Listener string
	Priority int
}

// Tracer records dispatches on one bus.
type Tracer struct {
	log     *slog.Logger
	metrics bool

	calls    []Call
	skipped  []Skip
	orphaned []string
	seen     map[string]bool

	// current is the ID of the innermost dispatch in progress.
	current string
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger for trace records, logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMetrics feeds every record into pkg/metrics as well.
func WithMetrics(on bool) Option {
	return func(t *Tracer) { t.metrics = on }
}

// New creates an empty tracer.
func New(opts ...Option) *Tracer {
	t := &Tracer{
		log:  logger.L,
		seen: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Options returns the bus options that install the tracer: its Hook and its
// warning handler. Without the warning handler, listeners that cannot be
// invoked are recorded as calls.
func (t *Tracer) Options() []event.Option {
	return []event.Option{
		event.WithHook(t.Hook()),
		event.WithWarningHandler(t.Warn),
	}
}

// Hook returns the invocation loop of the tracer.
func (t *Tracer) Hook() event.Hook {
	return t.dispatch
}

func (t *Tracer) dispatch(b *event.Bus, listeners []*event.Entry, name string, e event.Event) error {
	id := uuid.NewString()
	prev := t.current
	t.current = id
	defer func() { t.current = prev }()

	if t.metrics {
		metrics.RecordDispatch(name, len(listeners))
	}
	if len(listeners) == 0 {
		t.orphan(name)
		return nil
	}

	for i, entry := range listeners {
		if e.IsPropagationStopped() {
			t.stopped(id, name, listeners[i:])
			return nil
		}

		before := len(t.skipped)
		start := time.Now()

		err := b.Call(entry, name, e)

		if t.skippedIn(id, before) {
			continue
		}
		// Described after the call so lazy listeners show their target.
		desc := event.Describe(entry.Listener())

		call := Call{
			DispatchID:         id,
			Event:              name,
			Listener:           desc,
			Priority:           entry.Priority(),
			Duration:           time.Since(start),
			StoppedPropagation: e.IsPropagationStopped(),
			Err:                err,
		}
		t.calls = append(t.calls, call)
		t.observe(call, start)

		if err != nil {
			return err
		}
		if call.StoppedPropagation {
			t.log.Debug("event: listener stopped propagation",
				"dispatch_id", id,
				"event", name,
				"listener", desc,
			)
		}
	}
	if e.IsPropagationStopped() {
		// The last listener stopped the dispatch; nothing was left out.
		t.stopped(id, name, nil)
	}
	return nil
}

func (t *Tracer) observe(c Call, start time.Time) {
	t.log.Debug("event: notified listener",
		"dispatch_id", c.DispatchID,
		"event", c.Event,
		"listener", c.Listener,
		"priority", c.Priority,
		"duration", c.Duration,
	)
	if !t.metrics {
		return
	}

	status := metrics.StatusOK
	switch {
	case errors.Is(c.Err, event.ErrListenerPanic):
		status = metrics.StatusPanic
	case c.Err != nil:
		status = metrics.StatusError
	}
	metrics.ObserveListener(c.Event, c.Listener, status, start)
}

// skippedIn reports whether a not-callable skip was recorded for dispatch
// id since index from. Skips of nested dispatches carry their own ID.
func (t *Tracer) skippedIn(id string, from int) bool {
	for _, s := range t.skipped[from:] {
		if s.DispatchID == id && s.Reason == ReasonNotCallable {
			return true
		}
	}
	return false
}

func (t *Tracer) orphan(name string) {
	t.log.Debug("event: no listener for event", "event", name)
	if t.seen[name] {
		return
	}
	t.seen[name] = true
	t.orphaned = append(t.orphaned, name)
}

func (t *Tracer) stopped(id, name string, rest []*event.Entry) {
	for _, entry := range rest {
		desc := event.Describe(entry.Listener())
		t.skipped = append(t.skipped, Skip{
			DispatchID: id,
			Event:      name,
			Listener:   desc,
			Priority:   entry.Priority(),
			Reason:     ReasonStopped,
		})
		t.log.Debug("event: listener not called",
			"dispatch_id", id,
			"event", name,
			"listener", desc,
		)
	}
	if t.metrics {
		metrics.RecordStop(name, len(rest))
	}
}

// Warn records a listener the bus could not invoke. It is installed with
// event.WithWarningHandler by Options.
func (t *Tracer) Warn(err error) {
	var nc *event.NotCallableError
	if !errors.As(err, &nc) {
		return
	}
	t.skipped = append(t.skipped, Skip{
		DispatchID: t.current,
		Event:      nc.Event,
		Listener:   nc.Listener,
		Reason:     ReasonNotCallable,
	})
	if t.metrics {
		metrics.RecordNotCallable(nc.Event)
	}
}

// Called returns every recorded listener call in call order.
func (t *Tracer) Called() []Call {
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// Skipped returns the listeners that were reached but did not run.
func (t *Tracer) Skipped() []Skip {
	out := make([]Skip, len(t.skipped))
	copy(out, t.skipped)
	return out
}

// Orphaned returns the names of events dispatched without any listener, in
// first-seen order.
func (t *Tracer) Orphaned() []string {
	out := make([]string, len(t.orphaned))
	copy(out, t.orphaned)
	return out
}

// NotCalled returns the listeners registered on d that never ran, sorted by
// event name and then call order. Listeners are matched by their
// description, as rendered by event.Describe.
func (t *Tracer) NotCalled(d event.Dispatcher) []Listener {
	called := make(map[string]bool, len(t.calls))
	for _, c := range t.calls {
		called[c.Event+"\x00"+c.Listener] = true
	}

	all := d.AllListeners()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Listener
	for _, name := range names {
		for _, l := range all[name] {
			desc := event.Describe(l)
			if called[name+"\x00"+desc] {
				continue
			}
			prio, _ := d.ListenerPriority(name, l)
			out = append(out, Listener{Event: name, Listener: desc, Priority: prio})
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (t *Tracer) Reset() {
	t.calls = nil
	t.skipped = nil
	t.orphaned = nil
	t.seen = make(map[string]bool)
}
