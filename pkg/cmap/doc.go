// Package cmap provides a concurrent map keyed by key-stream position.
//
// Crib searches for one batch run on several goroutines at once and all of
// them register candidate key bytes at absolute key-stream positions. The
// map spreads positions over independently locked shards so that writers
// working on different regions of the key rarely contend.
//
//   - Sharding: murmur3 over the position, power-of-two shard count
//   - Fine-grained Locking: per-shard RWMutex
//   - Atomic read-modify-write: Upsert runs under the shard lock
//
// Usage:
//
//	m := cmap.New[domain.Position]()
//	m.Upsert(pos, seed, func(cur domain.Position, exists bool) domain.Position { ... })
//	m.Range(func(pos int, p domain.Position) bool { ... })
//
// Range visits shards one at a time, so a Range running concurrently with
// writers does not observe a consistent snapshot.
package cmap
