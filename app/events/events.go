// Package events names the events of the demo application.
package events

import (
	"github.com/shashiranjanraj/kashvi-events/app/models"
	"github.com/shashiranjanraj/kashvi-events/pkg/event"
)

const (
	UserCreated = "user.created"
	UserDeleted = "user.deleted"
	OrderPlaced = "order.placed"
)

// OrderPlacedEvent is dispatched as OrderPlaced once an order is stored.
type OrderPlacedEvent struct {
	event.BaseEvent

	Order *models.Order
}

func NewOrderPlaced(o *models.Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{Order: o}
}
