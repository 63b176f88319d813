// Package mediator provides an in-process mediator for requests,
// notifications and streams.
//
// Handlers and behaviors are resolved from a container.Resolver on every
// dispatch. Entry points are generic functions so call sites stay typed:
//
//	user, err := mediator.Send[User](ctx, m, GetUser{ID: "42"})
//	err = mediator.Publish(ctx, m, UserCreated{ID: "42"})
//	for n, err := range mediator.Stream[int](ctx, m, CountTo{N: 3}) { ... }
//
// # Handlers
//
// A request type has exactly one RequestHandler, a stream request type has
// exactly one StreamHandler, and a notification type has any number of
// NotificationHandlers:
//
//	c := container.New()
//	mediator.HandleRequest(c, func(ctx context.Context, q GetUser) (User, error) {
//	    return repo.Find(ctx, q.ID)
//	})
//	mediator.HandleNotification(c, func(ctx context.Context, e UserCreated) error {
//	    return mailer.SendWelcome(ctx, e.ID)
//	})
//
// Send and Stream fail with ErrHandlerNotFound when no handler is
// registered. Publish with no handlers succeeds.
//
// # Pipeline behaviors
//
// Behaviors wrap the handler call. They are registered on a PipelineBuilder
// with a Rule that selects message types:
//
//	builder := mediator.NewPipelineBuilder(c)
//	mediator.AddGlobalBehavior(builder, newLogging)                          // every type
//	mediator.AddGlobalBehaviorExcept(builder, newAudit, mediator.TypeOf[Ping]()) // all but Ping
//	mediator.AddBehaviorFor(builder, newValidation, mediator.TypeOf[CreateUser]())
//
// The first registered behavior is the outermost. A behavior implementing
// StreamBehavior also wraps streams. Every dispatch resolves fresh
// behavior instances, so behaviors may keep per-call state.
//
// # Ad-hoc subscribers
//
// Subscribers registered through the notify package are a separate path.
// RegisterDispatcherTrigger connects Publish for one notification type to
// a notify.Hub.
//
// # Configuration
//
// Config is loaded from the environment with LoadConfig:
//
//	MEDIATOR_PUBLISH_CONCURRENCY=8
//	MEDIATOR_RECOVER_PANICS=true
//	MEDIATOR_HANDLER_TIMEOUT=5s
package mediator
