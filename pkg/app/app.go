// Package app provides the kashvi-events application runner.
//
// # Minimal usage
//
//	package main
//
//	import (
//	    "github.com/shashiranjanraj/kashvi-events/pkg/app"
//	    "github.com/shashiranjanraj/kashvi-events/pkg/event"
//	)
//
//	func main() {
//	    app.New().
//	        Listen("user.created", func(e *event.GenericEvent) { /* ... */ }, 0).
//	        Subscribe(&AuditSubscriber{}).
//	        Run()
//	}
//
// Then inspect and exercise the wiring from the command line:
//
//	go run . debug:event-dispatcher
//	go run . dispatch user.created --subject alice --arg source=signup
//	go run . metrics
package app

import (
	"fmt"
	"os"

	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/pkg/container"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/event/trace"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// ─── Application Builder ──────────────────────────────────────────────────────

// Application is the central configuration object for a kashvi-events
// project. Build one with New(), register listeners, then call Run().
type Application struct {
	bus       *event.Bus
	tracer    *trace.Tracer
	container *container.Container
}

// New creates an Application from the loaded configuration. The tracer is
// installed when EVENTS_TRACE or EVENTS_METRICS is on; opts are applied to
// the bus after it.
func New(opts ...event.Option) *Application {
	if err := config.Load(); err != nil {
		logger.Warn("config: falling back to defaults", "error", err)
	}

	a := &Application{container: container.New()}

	busOpts := []event.Option{event.WithLogger(logger.L)}
	if config.EventsTrace() || config.EventsMetrics() {
		a.tracer = trace.New(trace.WithMetrics(config.EventsMetrics()))
		busOpts = append(busOpts, a.tracer.Options()...)
	}
	a.bus = event.NewBus(append(busOpts, opts...)...)
	return a
}

// Bus returns the application bus.
func (a *Application) Bus() *event.Bus { return a.bus }

// Tracer returns the tracer, or nil when tracing is off.
func (a *Application) Tracer() *trace.Tracer { return a.tracer }

// Container returns the service container backing lazy listeners.
func (a *Application) Container() *container.Container { return a.container }

// Listen registers listener for name at priority.
func (a *Application) Listen(name string, listener any, priority int) *Application {
	a.bus.AddListener(name, listener, priority)
	return a
}

// Subscribe registers every listener declared by subs.
func (a *Application) Subscribe(subs ...event.Subscriber) *Application {
	for _, s := range subs {
		a.bus.AddSubscriber(s)
	}
	return a
}

// Service binds a shared service in the container.
func (a *Application) Service(id string, factory container.Factory) *Application {
	a.container.Singleton(id, factory)
	return a
}

// ListenService registers method of service id as a lazy listener: the
// service is only built when name is first dispatched.
func (a *Application) ListenService(name, id, method string, priority int) *Application {
	a.bus.AddListener(name, a.container.Listener(id, method), priority)
	return a
}

// Run executes the command line in os.Args.
// This is the ONLY function you need to call from your main().
func (a *Application) Run() {
	if err := a.Command().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
