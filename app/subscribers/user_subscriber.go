package subscribers

import (
	"strings"

	"github.com/shashiranjanraj/kashvi-events/app/events"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

// UserSubscriber guards and audits the user lifecycle.
type UserSubscriber struct {
	Trail []string

	// Blocked domains are rejected before any other listener runs.
	Blocked []string
}

func NewUserSubscriber(blocked ...string) *UserSubscriber {
	return &UserSubscriber{Blocked: blocked}
}

func (s *UserSubscriber) SubscribedEvents() map[string]any {
	return map[string]any{
		events.UserCreated: []any{
			[]any{"Guard", 100},
			[]any{"Audit", -10},
		},
		events.UserDeleted: "Audit",
	}
}

// Guard stops the dispatch for subjects on a blocked domain.
func (s *UserSubscriber) Guard(e *event.GenericEvent) {
	addr, _ := e.Subject().(string)
	for _, domain := range s.Blocked {
		if strings.HasSuffix(addr, "@"+domain) {
			e.SetArgument("rejected", true)
			e.StopPropagation()
			return
		}
	}
}

// Audit records every event reaching it.
func (s *UserSubscriber) Audit(e event.Event, name string) {
	s.Trail = append(s.Trail, name)
}
