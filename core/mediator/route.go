package mediator

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/dmitrymomot/mediator/core/container"
)

// route is a type-erased entry point to the handlers of one concrete message
// type. Every handler registration adds one, so a message passed through an
// interface-typed parameter still reaches the handlers of its runtime type.
type route struct {
	kind Kind
	msg  reflect.Type
	out  reflect.Type

	request func(container.Resolver) (func(context.Context, any) (any, error), error)
	notify  func(container.Resolver) ([]func(context.Context, any) error, error)
	stream  func(container.Resolver) (func(context.Context, any) iter.Seq2[any, error], error)
}

func (rt route) produces(out reflect.Type) bool {
	if rt.out == out {
		return true
	}
	return out.Kind() == reflect.Interface && rt.out.Implements(out)
}

func isInterface[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Interface
}

func requestRoute[Req, Res any](r container.Registrar) {
	if isInterface[Req]() {
		return
	}
	container.ProvideValue(r, route{
		kind: KindRequest,
		msg:  reflect.TypeFor[Req](),
		out:  reflect.TypeFor[Res](),
		request: func(res container.Resolver) (func(context.Context, any) (any, error), error) {
			h, err := container.Resolve[RequestHandler[Req, Res]](res)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context, msg any) (any, error) {
				return h.Handle(ctx, msg.(Req))
			}, nil
		},
	})
}

func notificationRoute[N any](r container.Registrar) {
	if isInterface[N]() {
		return
	}
	container.ProvideValue(r, route{
		kind: KindNotification,
		msg:  reflect.TypeFor[N](),
		notify: func(res container.Resolver) ([]func(context.Context, any) error, error) {
			handlers, err := container.ResolveAll[NotificationHandler[N]](res)
			if err != nil {
				return nil, err
			}
			fns := make([]func(context.Context, any) error, 0, len(handlers))
			for _, h := range handlers {
				fns = append(fns, func(ctx context.Context, msg any) error {
					return h.Handle(ctx, msg.(N))
				})
			}
			return fns, nil
		},
	})
}

func streamRoute[Req, Item any](r container.Registrar) {
	if isInterface[Req]() {
		return
	}
	container.ProvideValue(r, route{
		kind: KindStream,
		msg:  reflect.TypeFor[Req](),
		out:  reflect.TypeFor[Item](),
		stream: func(res container.Resolver) (func(context.Context, any) iter.Seq2[any, error], error) {
			h, err := container.Resolve[StreamHandler[Req, Item]](res)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context, msg any) iter.Seq2[any, error] {
				return func(yield func(any, error) bool) {
					for item, err := range h.Handle(ctx, msg.(Req)) {
						if !yield(item, err) {
							return
						}
					}
				}
			}, nil
		},
	})
}

// findRoute returns the most recently registered route for msgType.
// A nil out matches any result type.
func findRoute(r container.Resolver, kind Kind, msgType, out reflect.Type) (route, bool, error) {
	routes, err := container.ResolveAll[route](r)
	if err != nil {
		return route{}, false, err
	}
	for i := len(routes) - 1; i >= 0; i-- {
		rt := routes[i]
		if rt.kind != kind || rt.msg != msgType {
			continue
		}
		if out == nil || rt.produces(out) {
			return rt, true, nil
		}
	}
	return route{}, false, nil
}

// requestHandlerFor resolves the handler for a request of runtime type msgType.
func requestHandlerFor[Req, Res any](r container.Resolver, msgType reflect.Type) (func(context.Context, Req) (any, error), error) {
	if !isInterface[Req]() {
		h, err := container.Resolve[RequestHandler[Req, Res]](r)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, req Req) (any, error) {
			return h.Handle(ctx, req)
		}, nil
	}

	out := reflect.TypeFor[Res]()
	rt, ok, err := findRoute(r, KindRequest, msgType, out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: request handler for %s returning %s", container.ErrNotRegistered, msgType, out)
	}
	h, err := rt.request(r)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, req Req) (any, error) {
		return h(ctx, req)
	}, nil
}

// notificationHandlersFor resolves every handler for a notification of runtime type msgType.
func notificationHandlersFor[N any](r container.Resolver, msgType reflect.Type) ([]NotificationHandler[N], error) {
	if !isInterface[N]() {
		return container.ResolveAll[NotificationHandler[N]](r)
	}

	rt, ok, err := findRoute(r, KindNotification, msgType, nil)
	if err != nil || !ok {
		return nil, err
	}
	fns, err := rt.notify(r)
	if err != nil {
		return nil, err
	}
	handlers := make([]NotificationHandler[N], 0, len(fns))
	for _, fn := range fns {
		handlers = append(handlers, NotificationHandlerFunc[N](func(ctx context.Context, n N) error {
			return fn(ctx, n)
		}))
	}
	return handlers, nil
}

// streamHandlerFor resolves the stream handler for a request of runtime type msgType.
func streamHandlerFor[Req, Item any](r container.Resolver, msgType reflect.Type) (func(context.Context, Req) iter.Seq2[any, error], error) {
	if !isInterface[Req]() {
		h, err := container.Resolve[StreamHandler[Req, Item]](r)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, req Req) iter.Seq2[any, error] {
			return func(yield func(any, error) bool) {
				for item, err := range h.Handle(ctx, req) {
					if !yield(item, err) {
						return
					}
				}
			}
		}, nil
	}

	out := reflect.TypeFor[Item]()
	rt, ok, err := findRoute(r, KindStream, msgType, out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: stream handler for %s yielding %s", container.ErrNotRegistered, msgType, out)
	}
	h, err := rt.stream(r)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, req Req) iter.Seq2[any, error] {
		return h(ctx, req)
	}, nil
}
