package mediator

import "context"

// Kind is the dispatch shape of a message.
type Kind int

const (
	KindUnknown Kind = iota
	KindRequest
	KindNotification
	KindStream
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

type messageIDCtx struct{}

// WithMessageID attaches a message ID to the context.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDCtx{}, id)
}

// MessageID extracts the ID of the dispatch in progress.
// Returns empty string if not present.
func MessageID(ctx context.Context) string {
	if id, ok := ctx.Value(messageIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type correlationIDCtx struct{}

// WithCorrelationID attaches a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDCtx{}, id)
}

// CorrelationID extracts the ID of the outermost dispatch. Nested dispatches
// made from inside a handler share it. Returns empty string if not present.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type messageNameCtx struct{}

// WithMessageName attaches a message name to the context.
func WithMessageName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, messageNameCtx{}, name)
}

// MessageName extracts the message type name of the dispatch in progress.
// Returns empty string if not present.
func MessageName(ctx context.Context) string {
	if name, ok := ctx.Value(messageNameCtx{}).(string); ok {
		return name
	}
	return ""
}

type messageKindCtx struct{}

// WithMessageKind attaches the dispatch shape to the context.
func WithMessageKind(ctx context.Context, kind Kind) context.Context {
	return context.WithValue(ctx, messageKindCtx{}, kind)
}

// MessageKind extracts the dispatch shape. Returns KindUnknown if not present.
func MessageKind(ctx context.Context) Kind {
	if kind, ok := ctx.Value(messageKindCtx{}).(Kind); ok {
		return kind
	}
	return KindUnknown
}

// withMessageMeta attaches all dispatch metadata to the context.
func withMessageMeta(ctx context.Context, id, name string, kind Kind) context.Context {
	if CorrelationID(ctx) == "" {
		ctx = WithCorrelationID(ctx, id)
	}
	ctx = WithMessageID(ctx, id)
	ctx = WithMessageName(ctx, name)
	ctx = WithMessageKind(ctx, kind)
	return ctx
}
