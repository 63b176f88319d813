package mediator

import (
	"context"
	"iter"

	"github.com/dmitrymomot/mediator/core/container"
)

// RequestHandler handles a request and produces exactly one result.
type RequestHandler[Req, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

// RequestHandlerFunc adapts a function to RequestHandler.
type RequestHandlerFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Handle implements RequestHandler.
func (f RequestHandlerFunc[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// NotificationHandler handles a notification. A notification may have any
// number of handlers, including none.
type NotificationHandler[N any] interface {
	Handle(ctx context.Context, n N) error
}

// NotificationHandlerFunc adapts a function to NotificationHandler.
type NotificationHandlerFunc[N any] func(ctx context.Context, n N) error

// Handle implements NotificationHandler.
func (f NotificationHandlerFunc[N]) Handle(ctx context.Context, n N) error {
	return f(ctx, n)
}

// StreamHandler handles a request by producing a lazy sequence of items.
// The sequence must stop producing when ctx is done.
type StreamHandler[Req, Item any] interface {
	Handle(ctx context.Context, req Req) iter.Seq2[Item, error]
}

// StreamHandlerFunc adapts a function to StreamHandler.
type StreamHandlerFunc[Req, Item any] func(ctx context.Context, req Req) iter.Seq2[Item, error]

// Handle implements StreamHandler.
func (f StreamHandlerFunc[Req, Item]) Handle(ctx context.Context, req Req) iter.Seq2[Item, error] {
	return f(ctx, req)
}

// RegisterRequestHandler registers a transient request handler factory.
// Registering a second handler for the same pair replaces the first.
//
// Example:
//
//	mediator.RegisterRequestHandler(c, func(r container.Resolver) (mediator.RequestHandler[GetUser, User], error) {
//	    repo, err := container.Resolve[UserRepository](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &getUserHandler{repo: repo}, nil
//	})
func RegisterRequestHandler[Req, Res any](r container.Registrar, factory func(container.Resolver) (RequestHandler[Req, Res], error)) {
	container.Provide(r, factory)
	requestRoute[Req, Res](r)
}

// HandleRequest registers fn as the handler for Req.
func HandleRequest[Req, Res any](r container.Registrar, fn RequestHandlerFunc[Req, Res]) {
	container.ProvideValue[RequestHandler[Req, Res]](r, fn)
	requestRoute[Req, Res](r)
}

// RegisterNotificationHandler adds a transient notification handler factory.
// Every registration for N receives every published N.
func RegisterNotificationHandler[N any](r container.Registrar, factory func(container.Resolver) (NotificationHandler[N], error)) {
	container.Provide(r, factory)
	notificationRoute[N](r)
}

// HandleNotification adds fn as a handler for N.
func HandleNotification[N any](r container.Registrar, fn NotificationHandlerFunc[N]) {
	container.ProvideValue[NotificationHandler[N]](r, fn)
	notificationRoute[N](r)
}

// RegisterStreamHandler registers a transient stream handler factory.
func RegisterStreamHandler[Req, Item any](r container.Registrar, factory func(container.Resolver) (StreamHandler[Req, Item], error)) {
	container.Provide(r, factory)
	streamRoute[Req, Item](r)
}

// HandleStream registers fn as the stream handler for Req.
func HandleStream[Req, Item any](r container.Registrar, fn StreamHandlerFunc[Req, Item]) {
	container.ProvideValue[StreamHandler[Req, Item]](r, fn)
	streamRoute[Req, Item](r)
}
