package eventfx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/eventfx"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

type auditSubscriber struct{ seen []string }

func newAuditSubscriber() *auditSubscriber { return &auditSubscriber{} }

func (s *auditSubscriber) SubscribedEvents() map[string]any {
	return map[string]any{"user.created": []any{"OnCreated", 10}}
}

func (s *auditSubscriber) OnCreated(e event.Event) { s.seen = append(s.seen, e.Name()) }

func TestModule_RegistersSubscribersOnStart(t *testing.T) {
	var (
		bus *event.Bus
		d   event.Dispatcher
	)

	// fx.As hides the concrete type, so supply it separately to keep a handle.
	sub := newAuditSubscriber()
	app := fxtest.New(t,
		eventfx.Module(),
		fx.Supply(sub),
		fx.Provide(eventfx.AsSubscriber(func(s *auditSubscriber) *auditSubscriber { return s })),
		fx.Provide(eventfx.AsOption(func() event.Option { return event.WithLogger(logger.Discard()) })),
		fx.Populate(&bus, &d),
	)

	assert.Same(t, bus, d)
	assert.False(t, bus.HasListeners("user.created"), "nothing is registered before start")

	app.RequireStart()

	require.True(t, bus.HasListeners("user.created"))
	prio, ok := bus.ListenerPriority("user.created", event.Bind(sub, "OnCreated"))
	require.True(t, ok)
	assert.Equal(t, 10, prio)

	_, err := d.Dispatch("user.created", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"user.created"}, sub.seen)

	app.RequireStop()
	assert.False(t, bus.HasAnyListeners())
}

func TestModule_WithoutSubscribers(t *testing.T) {
	var bus *event.Bus

	app := fxtest.New(t,
		eventfx.Module(),
		fx.Populate(&bus),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, bus)
	assert.False(t, bus.HasAnyListeners())
}
