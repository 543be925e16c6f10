// Package service provides the key-recovery services for padbreak.
//
// Services contain the recovery algorithm and orchestrate it over domain
// models. They hold no IO dependencies; persistence and progress reporting
// are injected by the caller.
//
// This package contains:
//
//   - Matcher: crib-dragging over every message pair of a batch
//   - Accumulator: vote-qualified key fragments per position, resolved into a KeyMap
//   - Merger: unanimity merge of per-batch key maps into the final key
//   - Engine: batch pipeline with revalidation, history and progress
//
// Matcher and Accumulator are safe for concurrent use; Engine serialises
// batch processing and may be queried from any goroutine.
package service
