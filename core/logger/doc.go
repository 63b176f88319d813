// Package logger provides slog attribute helpers shared by the mediator
// packages.
//
// Helpers return an empty slog.Attr for zero inputs, so they can be passed
// unconditionally:
//
//	log.ErrorContext(ctx, "notification failed",
//		logger.Message("UserCreated"),
//		logger.MessageID(mediator.MessageID(ctx)),
//		logger.Error(err),
//	)
//
// Empty attributes are dropped by the standard slog handlers.
package logger
