// Package notify implements ad-hoc, in-process notification subscriptions
// for handlers whose lifetime is not managed by a container.
//
// A Hub owns one Dispatcher per notification type and delivery mode.
// Dispatchers hold only weak references to subscriptions; the Registry that
// created a subscription owns it. When a registry is closed, or becomes
// unreachable and is collected, its subscriptions stop receiving
// notifications and are reaped on the next dispatch.
//
// # Usage
//
//	hub := notify.NewHub()
//
//	reg := notify.NewRegistry(hub)
//	defer reg.Close()
//
//	notify.Subscribe(reg, func(ctx context.Context, e UserCreated) error {
//		fmt.Println("created", e.ID)
//		return nil
//	})
//	notify.SubscribeAsync(reg, func(ctx context.Context, e UserCreated) error {
//		return sendWelcomeEmail(ctx, e.ID)
//	})
//
//	err := notify.CallHandlers(ctx, hub, UserCreated{ID: "42"})
//
// # Delivery
//
// Synchronous subscriptions run first, in subscription order, on the calling
// goroutine; the first error stops the pass. Asynchronous subscriptions then
// run concurrently and their errors are joined.
//
// # Execution contexts
//
// A context registry routes every delivery through an ExecutionContext, for
// example a Loop that serializes work on one goroutine:
//
//	loop := notify.NewLoop()
//	defer loop.Close()
//
//	ui := notify.NewContextRegistry(hub, notify.WithExecutionContext(loop))
//	notify.Subscribe(ui, renderUser)
//
// Subscriptions without an execution context fall back to the hub default
// (see WithDefaultExecutionContext and Hub.CaptureDefault). Deliveries with
// neither are skipped.
package notify
