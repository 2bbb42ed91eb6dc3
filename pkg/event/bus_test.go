package event_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// ─── Fixtures ────────────────────────────────────────────────────────────────

// tagged appends its tag to a shared log every time it runs.
type tagged struct {
	tag string
	log *[]string
}

func (t *tagged) On(e event.Event) { *t.log = append(*t.log, t.tag) }

func (t *tagged) Stop(e event.Event) {
	*t.log = append(*t.log, t.tag)
	e.StopPropagation()
}

func newBus(opts ...event.Option) *event.Bus {
	return event.NewBus(append([]event.Option{event.WithLogger(logger.Discard())}, opts...)...)
}

// ─── Registration ────────────────────────────────────────────────────────────

func TestBus_PriorityOrder(t *testing.T) {
	bus := newBus()
	var log []string

	p3 := event.Bind(&tagged{tag: "p3", log: &log}, "On")
	p7a := event.Bind(&tagged{tag: "p7#1", log: &log}, "On")
	p7b := event.Bind(&tagged{tag: "p7#2", log: &log}, "On")
	p1 := event.Bind(&tagged{tag: "p1", log: &log}, "On")

	bus.AddListener("order.placed", p3, 3)
	bus.AddListener("order.placed", p7a, 7)
	bus.AddListener("order.placed", p7b, 7)
	bus.AddListener("order.placed", p1, 1)

	assert.Equal(t, []any{p7a, p7b, p3, p1}, bus.Listeners("order.placed"))

	_, err := bus.Dispatch("order.placed", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p7#1", "p7#2", "p3", "p1"}, log)
}

func TestBus_ListenersUnknownEvent(t *testing.T) {
	bus := newBus()

	got := bus.Listeners("nope")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, bus.HasListeners("nope"))
	assert.False(t, bus.HasAnyListeners())
	assert.Empty(t, bus.AllListeners())
}

func TestBus_AddLaterListenerResorts(t *testing.T) {
	bus := newBus()
	var log []string

	low := event.Bind(&tagged{tag: "low", log: &log}, "On")
	high := event.Bind(&tagged{tag: "high", log: &log}, "On")

	bus.AddListener("x", low, -5)
	assert.Equal(t, []any{low}, bus.Listeners("x"))

	bus.AddListener("x", high, 5)
	assert.Equal(t, []any{high, low}, bus.Listeners("x"))
}

func TestBus_RemoveListener(t *testing.T) {
	bus := newBus()
	var log []string
	a := event.Bind(&tagged{tag: "a", log: &log}, "On")
	b := event.Bind(&tagged{tag: "b", log: &log}, "On")

	bus.AddListener("x", a, 0)
	bus.AddListener("x", b, 0)

	bus.RemoveListener("x", a)
	assert.Equal(t, []any{b}, bus.Listeners("x"))

	// Unknown listener and unknown event are no-ops.
	bus.RemoveListener("x", a)
	bus.RemoveListener("y", b)
	assert.Equal(t, []any{b}, bus.Listeners("x"))

	bus.RemoveListener("x", b)
	assert.False(t, bus.HasListeners("x"))
	assert.NotContains(t, bus.AllListeners(), "x")
}

func TestBus_RemoveDuplicateRemovesOne(t *testing.T) {
	bus := newBus()
	var log []string
	l := event.Bind(&tagged{tag: "dup", log: &log}, "On")

	bus.AddListener("x", l, 10)
	bus.AddListener("x", l, 0)

	bus.RemoveListener("x", l)
	require.Len(t, bus.Listeners("x"), 1)

	prio, ok := bus.ListenerPriority("x", l)
	require.True(t, ok)
	assert.Equal(t, 0, prio)
}

func TestBus_RemoveByEqualMethodRef(t *testing.T) {
	bus := newBus()
	var log []string
	recv := &tagged{tag: "r", log: &log}

	bus.AddListener("x", event.Bind(recv, "On"), 0)
	bus.RemoveListener("x", event.MethodRef{Receiver: recv, Method: "On"})

	assert.False(t, bus.HasListeners("x"))
}

func TestBus_RemoveNamedFunc(t *testing.T) {
	bus := newBus()
	bus.AddListener("x", namedListener, 0)

	bus.RemoveListener("x", namedListener)
	assert.False(t, bus.HasListeners("x"))
}

func namedListener(e event.Event) {}

func TestBus_ListenerPriority(t *testing.T) {
	bus := newBus()
	var log []string
	l := event.Bind(&tagged{tag: "l", log: &log}, "On")
	other := event.Bind(&tagged{tag: "o", log: &log}, "On")

	bus.AddListener("x", l, -12)

	prio, ok := bus.ListenerPriority("x", l)
	assert.True(t, ok)
	assert.Equal(t, -12, prio)

	_, ok = bus.ListenerPriority("x", other)
	assert.False(t, ok)

	_, ok = bus.ListenerPriority("y", l)
	assert.False(t, ok)
}

func TestBus_AllListeners(t *testing.T) {
	bus := newBus()
	var log []string
	a := event.Bind(&tagged{tag: "a", log: &log}, "On")
	b := event.Bind(&tagged{tag: "b", log: &log}, "On")

	bus.AddListener("one", a, 0)
	bus.AddListener("two", b, 1)
	bus.AddListener("two", a, 2)

	assert.Equal(t, map[string][]any{
		"one": {a},
		"two": {a, b},
	}, bus.AllListeners())
	assert.True(t, bus.HasAnyListeners())
}

// ─── Dispatch ────────────────────────────────────────────────────────────────

func TestBus_DispatchWithoutListeners(t *testing.T) {
	bus := newBus()
	e := event.NewGenericEvent("subject", nil)

	got, err := bus.Dispatch("nobody.listens", e)
	require.NoError(t, err)
	assert.Same(t, e, got)
	assert.Equal(t, "nobody.listens", got.Name())
	assert.False(t, got.IsPropagationStopped())
}

func TestBus_DispatchNilEvent(t *testing.T) {
	bus := newBus()

	got, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Name())
}

func TestBus_StopPropagation(t *testing.T) {
	bus := newBus()
	var log []string

	bus.AddListener("x", event.Bind(&tagged{tag: "A", log: &log}, "Stop"), 10)
	bus.AddListener("x", event.Bind(&tagged{tag: "B", log: &log}, "On"), 0)

	e, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, log)
	assert.True(t, e.IsPropagationStopped())
}

func TestBus_PreStoppedEventRunsNothing(t *testing.T) {
	bus := newBus()
	var log []string
	bus.AddListener("x", event.Bind(&tagged{tag: "A", log: &log}, "On"), 0)

	e := event.NewEvent()
	e.StopPropagation()

	_, err := bus.Dispatch("x", e)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestBus_ListenerReceivesNameAndDispatcher(t *testing.T) {
	bus := newBus()

	var (
		gotName string
		gotBus  event.Dispatcher
		fromEvt event.Dispatcher
	)
	bus.AddListener("user.created", func(e event.Event, name string, d event.Dispatcher) {
		gotName = name
		gotBus = d
		fromEvt = e.Dispatcher()
	}, 0)

	e, err := bus.Dispatch("user.created", nil)
	require.NoError(t, err)

	assert.Equal(t, "user.created", gotName)
	assert.Same(t, bus, gotBus)
	assert.Same(t, bus, fromEvt)
	assert.Nil(t, e.Dispatcher(), "dispatcher is cleared once the dispatch returns")
}

func TestBus_ReentrantDispatch(t *testing.T) {
	bus := newBus()
	var log []string

	bus.AddListener("outer", func(e event.Event, _ string, d event.Dispatcher) error {
		log = append(log, "outer:before")
		if _, err := d.Dispatch("inner", nil); err != nil {
			return err
		}
		log = append(log, "outer:after")
		return nil
	}, 0)
	bus.AddListener("inner", event.Bind(&tagged{tag: "inner", log: &log}, "On"), 0)

	_, err := bus.Dispatch("outer", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner", "outer:after"}, log)
}

func TestBus_NestedDispatchRestoresDispatcher(t *testing.T) {
	outer := newBus()
	inner := newBus()
	e := event.NewEvent()

	var seen event.Dispatcher
	inner.AddListener("x", func(ev event.Event) { seen = ev.Dispatcher() }, 0)
	outer.AddListener("x", func(ev event.Event) error {
		_, err := inner.Dispatch("x", ev)
		return err
	}, 0)

	var after event.Dispatcher
	outer.AddListener("x", func(ev event.Event) { after = ev.Dispatcher() }, -1)

	_, err := outer.Dispatch("x", e)
	require.NoError(t, err)
	assert.Same(t, inner, seen)
	assert.Same(t, outer, after)
}

func TestBus_SnapshotDuringDispatch(t *testing.T) {
	bus := newBus()
	var log []string
	late := event.Bind(&tagged{tag: "late", log: &log}, "On")

	bus.AddListener("x", func(e event.Event, _ string, d event.Dispatcher) {
		log = append(log, "first")
		d.AddListener("x", late, -1)
	}, 0)

	_, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, log)
	assert.Len(t, bus.Listeners("x"), 2)
}

// ─── Listener failures ───────────────────────────────────────────────────────

func TestBus_NotCallableIsSkipped(t *testing.T) {
	var warnings []error
	bus := newBus(event.WithWarningHandler(func(err error) { warnings = append(warnings, err) }))
	var log []string

	bus.AddListener("x", 42, 10)
	bus.AddListener("x", event.Bind(&tagged{tag: "t", log: &log}, "Missing"), 5)
	bus.AddListener("x", event.Bind(&tagged{tag: "ok", log: &log}, "On"), 0)

	_, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, log)

	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.ErrorIs(t, w, event.ErrNotCallable)
	}
	var nc *event.NotCallableError
	require.ErrorAs(t, warnings[1], &nc)
	assert.Equal(t, "x", nc.Event)
	assert.Contains(t, nc.Reason, "Missing")
}

func TestBus_TypedFuncListener(t *testing.T) {
	var warnings []error
	bus := newBus(event.WithWarningHandler(func(err error) { warnings = append(warnings, err) }))

	var subject any
	bus.AddListener("x", func(e *event.GenericEvent) { subject = e.Subject() }, 0)

	_, err := bus.Dispatch("x", event.NewGenericEvent("alice", nil))
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
	assert.Empty(t, warnings)

	// A plain event cannot be passed as *GenericEvent.
	_, err = bus.Dispatch("x", nil)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestBus_ListenerErrorAborts(t *testing.T) {
	bus := newBus()
	boom := errors.New("boom")
	var log []string

	bus.AddListener("x", func(e event.Event) error { return boom }, 10)
	bus.AddListener("x", event.Bind(&tagged{tag: "never", log: &log}, "On"), 0)

	_, err := bus.Dispatch("x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var le *event.ListenerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "x", le.Event)
	assert.Empty(t, log)
}

func TestBus_PanicIsRecovered(t *testing.T) {
	bus := newBus()
	var log []string

	bus.AddListener("x", func() { panic("kaput") }, 10)
	bus.AddListener("x", event.Bind(&tagged{tag: "never", log: &log}, "On"), 0)

	var err error
	require.NotPanics(t, func() { _, err = bus.Dispatch("x", nil) })
	assert.ErrorIs(t, err, event.ErrListenerPanic)

	var pe *event.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaput", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Empty(t, log)
}

// ─── Lazy listeners ──────────────────────────────────────────────────────────

func TestBus_LazyListener(t *testing.T) {
	bus := newBus()
	var (
		log    []string
		calls  int
		target *tagged
	)
	lazy := event.Lazy(func() any {
		calls++
		target = &tagged{tag: "lazy", log: &log}
		return target
	}, "On")

	bus.AddListener("x", lazy, 5)
	assert.True(t, bus.HasListeners("x"))
	assert.Equal(t, 0, calls, "HasListeners must not build the listener")

	_, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	_, err = bus.Dispatch("x", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"lazy", "lazy"}, log)
	assert.Equal(t, []any{event.Bind(target, "On")}, bus.Listeners("x"))
}

func TestBus_LazyListenerFoundByResolvedTarget(t *testing.T) {
	bus := newBus()
	var log []string
	target := &tagged{tag: "lazy", log: &log}
	lazy := event.Lazy(func() any { return target }, "On")

	bus.AddListener("x", lazy, 5)

	prio, ok := bus.ListenerPriority("x", event.Bind(target, "On"))
	require.True(t, ok)
	assert.Equal(t, 5, prio)
	assert.True(t, lazy.Loaded())

	bus.RemoveListener("x", event.Bind(target, "On"))
	assert.False(t, bus.HasListeners("x"))
}

func TestBus_LazyListenerRemovedByRef(t *testing.T) {
	bus := newBus()
	lazy := event.Lazy(func() any { return func(event.Event) {} }, "")

	bus.AddListener("x", lazy, 0)
	bus.RemoveListener("x", lazy)

	assert.False(t, bus.HasListeners("x"))
}

func TestBus_BrokenLazyListenerDoesNotBreakQueries(t *testing.T) {
	bus := newBus()
	broken := event.Lazy(func() any { panic("unknown binding") }, "On")
	plain := func(event.Event) {}

	bus.AddListener("x", broken, 5)
	bus.AddListener("x", plain, 0)

	var listeners []any
	require.NotPanics(t, func() { listeners = bus.Listeners("x") })
	require.Len(t, listeners, 2)
	assert.Same(t, broken, listeners[0])
	assert.False(t, broken.Loaded())

	require.NotPanics(t, func() { bus.AllListeners() })

	prio, ok := bus.ListenerPriority("x", broken)
	require.True(t, ok)
	assert.Equal(t, 5, prio)

	require.NotPanics(t, func() { bus.RemoveListener("x", plain) })
	assert.Equal(t, []any{broken}, bus.Listeners("x"))

	bus.RemoveListener("x", broken)
	assert.False(t, bus.HasListeners("x"))
}

func TestBus_RemoveFollowsStoredOrder(t *testing.T) {
	f := func(event.Event) {}

	unsorted := newBus()
	unsorted.AddListener("x", f, 0)
	unsorted.AddListener("x", f, 10)
	unsorted.RemoveListener("x", f)
	prio, _ := unsorted.ListenerPriority("x", f)
	assert.Equal(t, 10, prio, "before any read the list is in insertion order")

	sorted := newBus()
	sorted.AddListener("x", f, 0)
	sorted.AddListener("x", f, 10)
	sorted.Listeners("x")
	sorted.RemoveListener("x", f)
	prio, _ = sorted.ListenerPriority("x", f)
	assert.Equal(t, 0, prio, "a read sorts the list in place")
}

// ─── Hooks ───────────────────────────────────────────────────────────────────

func TestBus_WithHook(t *testing.T) {
	var seen []int
	hook := func(b *event.Bus, listeners []*event.Entry, name string, e event.Event) error {
		for _, l := range listeners {
			seen = append(seen, l.Priority())
		}
		return event.CallListeners(b, listeners, name, e)
	}
	bus := newBus(event.WithHook(hook))
	var log []string

	bus.AddListener("x", event.Bind(&tagged{tag: "a", log: &log}, "On"), 1)
	bus.AddListener("x", event.Bind(&tagged{tag: "b", log: &log}, "On"), 2)

	_, err := bus.Dispatch("x", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, seen)
	assert.Equal(t, []string{"b", "a"}, log)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "<nil>", event.Describe(nil))
	assert.Equal(t, "*event_test.tagged::On", event.Describe(event.Bind(&tagged{}, "On")))
	assert.Equal(t, "lazy::On", event.Describe(event.Lazy(func() any { return nil }, "On")))
	assert.Contains(t, event.Describe(namedListener), "namedListener")
	assert.Equal(t, "int", event.Describe(42))
}
