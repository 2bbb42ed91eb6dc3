package subscribers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-events/app/events"
	"github.com/shashiranjanraj/kashvi-events/app/subscribers"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

func TestUserSubscriber_Descriptor(t *testing.T) {
	subs, err := event.Inspect(subscribers.NewUserSubscriber())
	require.NoError(t, err)

	assert.ElementsMatch(t, []event.Subscription{
		{Event: events.UserCreated, Method: "Guard", Priority: 100},
		{Event: events.UserCreated, Method: "Audit", Priority: -10},
		{Event: events.UserDeleted, Method: "Audit"},
	}, subs)
}

func TestUserSubscriber_GuardStopsBlockedDomains(t *testing.T) {
	bus := event.NewBus(event.WithLogger(logger.Discard()))
	s := subscribers.NewUserSubscriber("spam.test")
	bus.AddSubscriber(s)

	e, err := bus.Dispatch(events.UserCreated, event.NewGenericEvent("bot@spam.test", nil))
	require.NoError(t, err)
	assert.True(t, e.IsPropagationStopped())
	assert.Empty(t, s.Trail, "audit runs after the guard and is skipped")

	e, err = bus.Dispatch(events.UserCreated, event.NewGenericEvent("ann@example.com", nil))
	require.NoError(t, err)
	assert.False(t, e.IsPropagationStopped())
	assert.Equal(t, []string{events.UserCreated}, s.Trail)

	bus.RemoveSubscriber(s)
	assert.False(t, bus.HasAnyListeners())
}
