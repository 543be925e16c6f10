// Package shutdown provides graceful shutdown for padbreak.
//
// SIGINT and SIGTERM cancel the work context; a batch interrupted this way
// leaves the key history untouched. Registered hooks then close the
// history store and the metrics listener.
//
// Usage:
//
//	ctx, cancel := shutdown.WithSignals(context.Background())
//	defer cancel()
package shutdown
