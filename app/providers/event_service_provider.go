// Package providers registers the demo listeners on an Application.
package providers

import (
	"strings"

	"github.com/shashiranjanraj/kashvi-events/app/events"
	"github.com/shashiranjanraj/kashvi-events/app/listeners"
	"github.com/shashiranjanraj/kashvi-events/app/subscribers"
	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/pkg/app"
	"github.com/shashiranjanraj/kashvi-events/pkg/container"
)

// EventServiceProvider wires every listener of the demo application.
func EventServiceProvider(a *app.Application) {
	a.Service("mailer", func() interface{} { return listeners.NewMailer() })

	a.ListenService(events.UserCreated, "mailer", "OnUserCreated", 0).
		ListenService(events.OrderPlaced, "mailer", "OnOrderPlaced", 0).
		Subscribe(subscribers.NewUserSubscriber(blockedDomains()...))
}

// Mailer returns the mailer bound by EventServiceProvider, building it if
// no event needed it yet.
func Mailer(c *container.Container) *listeners.Mailer {
	return c.Make("mailer").(*listeners.Mailer)
}

// blockedDomains reads the comma-separated BLOCKED_DOMAINS setting.
func blockedDomains() []string {
	var out []string
	for _, d := range strings.Split(config.Get("BLOCKED_DOMAINS", ""), ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}
