package event

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

// ListenerFunc is the canonical listener signature. A returned error aborts
// the dispatch and is handed back to the Dispatch caller.
type ListenerFunc func(e Event, name string, d Dispatcher) error

// HandleEvent makes ListenerFunc a Handler.
func (f ListenerFunc) HandleEvent(e Event, name string, d Dispatcher) error {
	return f(e, name, d)
}

// Handler is implemented by callable listener objects.
type Handler interface {
	HandleEvent(e Event, name string, d Dispatcher) error
}

// MethodRef binds a receiver with the name of one of its exported methods.
// It is what subscribers register, and the recommended way to register
// methods: a method value such as obj.OnSaved is a fresh closure on every
// evaluation and cannot be told apart from the same method on another
// receiver.
type MethodRef struct {
	Receiver any
	Method   string
}

// Bind returns a MethodRef for receiver.method.
func Bind(receiver any, method string) MethodRef {
	return MethodRef{Receiver: receiver, Method: method}
}

func (m MethodRef) String() string {
	return fmt.Sprintf("%T::%s", m.Receiver, m.Method)
}

// LazyRef defers building a listener until it is first needed. Factory is
// called at most once; its result is bound with Method, or used as the
// listener itself when Method is empty.
type LazyRef struct {
	Factory func() any
	Method  string

	loaded bool
	target any
}

// Lazy returns a LazyRef. Register the returned pointer; removal and
// priority lookups match it by identity or by its resolved target.
func Lazy(factory func() any, method string) *LazyRef {
	return &LazyRef{Factory: factory, Method: method}
}

// Loaded reports whether the factory has already run.
func (l *LazyRef) Loaded() bool { return l.loaded }

// Resolve runs the factory on first use and returns the resolved listener.
// A panicking factory leaves the ref unresolved.
func (l *LazyRef) Resolve() any {
	if l.loaded {
		return l.target
	}

	var recv any
	if l.Factory != nil {
		recv = l.Factory()
	}
	if l.Method == "" {
		l.target = recv
	} else {
		l.target = MethodRef{Receiver: recv, Method: l.Method}
	}
	l.loaded = true
	return l.target
}

// invokeFunc is a listener resolved for one particular call.
type invokeFunc func(e Event, name string, d Dispatcher) error

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()

	errNilListener = errors.New("listener is nil")
)

// resolve turns a registered listener into something invocable with e and d.
func resolve(l any, e Event, d Dispatcher) (invokeFunc, error) {
	if l == nil {
		return nil, errNilListener
	}
	if rv := reflect.ValueOf(l); rv.Kind() == reflect.Func && rv.IsNil() {
		return nil, errNilListener
	}

	switch fn := l.(type) {
	case ListenerFunc:
		return invokeFunc(fn), nil
	case func(Event, string, Dispatcher) error:
		return fn, nil
	case func(Event, string, Dispatcher):
		return func(e Event, name string, d Dispatcher) error { fn(e, name, d); return nil }, nil
	case func(Event) error:
		return func(e Event, _ string, _ Dispatcher) error { return fn(e) }, nil
	case func(Event):
		return func(e Event, _ string, _ Dispatcher) error { fn(e); return nil }, nil
	case func() error:
		return func(Event, string, Dispatcher) error { return fn() }, nil
	case func():
		return func(Event, string, Dispatcher) error { fn(); return nil }, nil
	case Handler:
		return fn.HandleEvent, nil
	case MethodRef:
		if fn.Receiver == nil {
			return nil, fmt.Errorf("method %q bound to a nil receiver", fn.Method)
		}
		m := reflect.ValueOf(fn.Receiver).MethodByName(fn.Method)
		if !m.IsValid() {
			return nil, fmt.Errorf("%T has no exported method %q", fn.Receiver, fn.Method)
		}
		return resolve(m.Interface(), e, d)
	case *LazyRef:
		return resolve(fn.Resolve(), e, d)
	}

	rv := reflect.ValueOf(l)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%T is not a function", l)
	}
	return resolveReflect(rv, e, d)
}

// resolveReflect adapts an arbitrary func whose parameters accept, in
// order, the event, the event name and the dispatcher, e.g.
// func(*GenericEvent) or func(*OrderPlaced, string).
func resolveReflect(fn reflect.Value, e Event, d Dispatcher) (invokeFunc, error) {
	t := fn.Type()
	if t.IsVariadic() || t.NumIn() > 3 {
		return nil, fmt.Errorf("unsupported signature %s", t)
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return nil, fmt.Errorf("unsupported results in %s", t)
	}

	args := make([]reflect.Value, t.NumIn())
	if t.NumIn() > 0 {
		ev := reflect.ValueOf(e)
		if e == nil || !ev.Type().AssignableTo(t.In(0)) {
			return nil, fmt.Errorf("%T cannot be passed as %s", e, t.In(0))
		}
		args[0] = ev
	}
	if t.NumIn() > 1 {
		if t.In(1).Kind() != reflect.String {
			return nil, fmt.Errorf("second parameter of %s must be a string", t)
		}
	}
	if t.NumIn() > 2 {
		if d == nil {
			args[2] = reflect.Zero(t.In(2))
		} else if dv := reflect.ValueOf(d); dv.Type().AssignableTo(t.In(2)) {
			args[2] = dv
		} else {
			return nil, fmt.Errorf("%T cannot be passed as %s", d, t.In(2))
		}
	}

	return func(_ Event, name string, _ Dispatcher) error {
		if len(args) > 1 {
			args[1] = reflect.ValueOf(name).Convert(t.In(1))
		}
		out := fn.Call(args)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

// sameListener reports whether a registered listener matches l: identity
// first, then value equality.
func sameListener(registered, l any) bool {
	if identical(registered, l) {
		return true
	}
	a, okA := canonical(registered)
	b, okB := canonical(l)
	if !okA || !okB {
		return false
	}
	return equal(a, b)
}

// identical compares with == when both dynamic values allow it.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// equal is the fallback: funcs compare by code pointer, MethodRefs by
// method name and receiver, anything else deeply.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return !va.IsNil() && !vb.IsNil() && va.Pointer() == vb.Pointer()
	}
	if ma, ok := a.(MethodRef); ok {
		mb := b.(MethodRef)
		return ma.Method == mb.Method && (identical(ma.Receiver, mb.Receiver) || equal(ma.Receiver, mb.Receiver))
	}
	return reflect.DeepEqual(a, b)
}

// canonical resolves lazy listeners. A lazy listener whose factory panics
// is returned as is with ok false; it only matches itself.
func canonical(l any) (out any, ok bool) {
	lazy, isLazy := l.(*LazyRef)
	if !isLazy {
		return l, true
	}
	defer func() {
		if r := recover(); r != nil {
			out, ok = lazy, false
		}
	}()
	return lazy.Resolve(), true
}

// Describe renders a listener for logs, traces and the CLI.
func Describe(l any) string {
	switch x := l.(type) {
	case nil:
		return "<nil>"
	case MethodRef:
		return x.String()
	case *LazyRef:
		if x.loaded {
			return Describe(x.target)
		}
		if x.Method == "" {
			return "lazy"
		}
		return "lazy::" + x.Method
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(l)
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		if f := runtime.FuncForPC(rv.Pointer()); f != nil {
			return f.Name()
		}
	}
	return fmt.Sprintf("%T", l)
}
