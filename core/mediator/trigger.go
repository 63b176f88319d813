package mediator

import (
	"context"

	"github.com/dmitrymomot/mediator/core/container"
	"github.com/dmitrymomot/mediator/core/notify"
)

// DispatcherTrigger is a notification handler that forwards published
// notifications to the ad-hoc subscribers of a notify.Hub.
type DispatcherTrigger[N any] struct {
	hub *notify.Hub
}

// NewDispatcherTrigger creates a trigger forwarding N to hub.
func NewDispatcherTrigger[N any](hub *notify.Hub) *DispatcherTrigger[N] {
	return &DispatcherTrigger[N]{hub: hub}
}

// Handle implements NotificationHandler.
func (t *DispatcherTrigger[N]) Handle(ctx context.Context, n N) error {
	return notify.CallHandlers(ctx, t.hub, n)
}

// RegisterDispatcherTrigger bridges Publish to hub for notification type N.
// Without it, Publish only reaches handlers registered in the container.
//
// Example:
//
//	hub := notify.NewHub()
//	mediator.RegisterDispatcherTrigger[UserCreated](c, hub)
//
//	reg := notify.NewRegistry(hub)
//	notify.Subscribe(reg, onUserCreated)
//
//	err := mediator.Publish(ctx, m, UserCreated{ID: "42"}) // reaches onUserCreated
func RegisterDispatcherTrigger[N any](r container.Registrar, hub *notify.Hub) {
	if hub == nil {
		panic("mediator: nil hub")
	}
	container.ProvideValue[NotificationHandler[N]](r, NewDispatcherTrigger[N](hub))
	notificationRoute[N](r)
}
