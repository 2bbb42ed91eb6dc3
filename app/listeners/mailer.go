package listeners

import (
	"fmt"

	"github.com/shashiranjanraj/kashvi-events/app/events"
	"github.com/shashiranjanraj/kashvi-events/app/models"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

// Mailer queues the transactional mails. It is registered lazily through the
// container, so it is only built once a mail-worthy event happens.
type Mailer struct {
	Outbox []string
}

func NewMailer() *Mailer {
	return &Mailer{}
}

// OnUserCreated sends the welcome mail. The subject is a *models.User or a
// plain address.
func (m *Mailer) OnUserCreated(e *event.GenericEvent) error {
	to, err := recipient(e.Subject())
	if err != nil {
		return err
	}

	m.Outbox = append(m.Outbox, "welcome:"+to)
	e.SetArgument("welcome_mail", to)
	logger.Info("mail queued", "template", "welcome", "to", to)
	return nil
}

// OnOrderPlaced sends the receipt.
func (m *Mailer) OnOrderPlaced(e *events.OrderPlacedEvent) {
	m.Outbox = append(m.Outbox, fmt.Sprintf("receipt:%d", e.Order.ID))
}

func recipient(subject any) (string, error) {
	switch s := subject.(type) {
	case *models.User:
		if s != nil && s.Email != "" {
			return s.Email, nil
		}
	case string:
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("mailer: no recipient in subject %T", subject)
}
