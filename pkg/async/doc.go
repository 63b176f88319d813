// Package async provides small future helpers for running error-returning
// functions concurrently and waiting on them.
//
// # Usage
//
//	f1 := async.Exec(ctx, evt, deliverToAudit)
//	f2 := async.Exec(ctx, evt, deliverToCache)
//
//	// Wait for every delivery and collect all failures.
//	if err := async.AwaitAll(f1, f2); err != nil {
//		return err
//	}
//
// # Context Support
//
// Exec checks the context before running the function. A future created
// with an already cancelled context settles immediately with ctx.Err()
// and the function is never invoked.
package async
