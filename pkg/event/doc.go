// Package event provides the kashvi-events dispatcher: an in-process,
// synchronous publish/subscribe bus with listener priorities.
//
// # Listeners
//
// A listener is registered against an event name with a priority. Higher
// priorities run first; equal priorities keep their registration order.
//
//	bus := event.NewBus()
//	bus.AddListener("user.created", func(e event.Event) {
//	    // ...
//	}, 10)
//
// Anything can be registered. The bus only works out how to call a listener
// when it is about to run; a value it cannot call is logged as a warning and
// skipped, and the remaining listeners still run. Supported shapes are
// ListenerFunc and its shorter variants, Handler, MethodRef (see Bind),
// *LazyRef (see Lazy) and any func whose parameters take the event, the
// event name and the dispatcher, in that order.
//
// # Dispatching
//
//	e, err := bus.Dispatch("user.created", event.NewGenericEvent(user, nil))
//
// A listener can call e.StopPropagation() to keep lower-priority listeners
// from running. A listener that returns an error or panics ends the
// dispatch, and Dispatch returns a *ListenerError or *PanicError.
//
// # Removal
//
// RemoveListener removes one entry: the first whose listener is identical
// (==) to the one given, or failing that equal to it. Funcs compare equal
// when they share code, so closures created by the same literal are
// interchangeable. Use Bind for methods.
//
// # Subscribers
//
// A Subscriber describes its listeners with a map from event name to method
// names and priorities; see Subscriber for the accepted shapes.
//
// # Hooks
//
// The invocation loop is pluggable. NewBus(WithHook(h)) replaces the
// default CallListeners for the lifetime of the bus; package trace uses it
// to record which listeners ran.
package event
