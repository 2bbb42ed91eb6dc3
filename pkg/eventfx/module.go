// Package eventfx wires the event bus into a go.uber.org/fx application.
//
// Subscribers and bus options are collected from value groups, so any module
// can contribute them:
//
//	fx.New(
//	    eventfx.Module(),
//	    fx.Provide(eventfx.AsSubscriber(subscribers.NewUserSubscriber)),
//	    fx.Provide(eventfx.AsOption(func() event.Option { return event.WithLogger(l) })),
//	)
//
// Subscribers are registered when the application starts and removed when
// it stops.
package eventfx

import (
	"context"

	"go.uber.org/fx"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// Value group names.
const (
	SubscriberGroup = "event.subscribers"
	OptionGroup     = "event.options"
)

// Params are the inputs of New.
type Params struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Options     []event.Option     `group:"event.options"`
	Subscribers []event.Subscriber `group:"event.subscribers"`
}

// Result exposes the bus both as *event.Bus and as event.Dispatcher.
type Result struct {
	fx.Out

	Bus        *event.Bus
	Dispatcher event.Dispatcher
}

// Module returns the fx module providing the bus.
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(New),
	)
}

// New builds the bus from the grouped options and hooks the grouped
// subscribers into the application lifecycle.
func New(p Params) Result {
	bus := event.NewBus(p.Options...)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			for _, s := range p.Subscribers {
				bus.AddSubscriber(s)
			}
			logger.Debug("event: subscribers registered", "count", len(p.Subscribers))
			return nil
		},
		OnStop: func(_ context.Context) error {
			for _, s := range p.Subscribers {
				bus.RemoveSubscriber(s)
			}
			return nil
		},
	})

	return Result{Bus: bus, Dispatcher: bus}
}

// AsSubscriber annotates a constructor so its result joins the subscriber
// group. The constructor must return a type implementing event.Subscriber.
func AsSubscriber(ctor any) any {
	return fx.Annotate(ctor,
		fx.As(new(event.Subscriber)),
		fx.ResultTags(`group:"`+SubscriberGroup+`"`),
	)
}

// AsOption annotates a constructor returning an event.Option so it is
// applied to the bus.
func AsOption(ctor any) any {
	return fx.Annotate(ctor,
		fx.ResultTags(`group:"`+OptionGroup+`"`),
	)
}
