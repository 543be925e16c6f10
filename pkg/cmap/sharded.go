// Package cmap provides a concurrent map keyed by key-stream position.
package cmap

import (
	"encoding/binary"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map from position to V.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[int]V
}

// New creates a new sharded map with the default shard count.
func New[V any]() *Map[V] {
	return newWithShards[V](DefaultShardCount)
}

// newWithShards creates a map with shardCount shards. shardCount must be a
// power of 2; other values fall back to the default.
func newWithShards[V any](shardCount int) *Map[V] {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	m := &Map[V]{
		shards:    make([]*shard[V], shardCount),
		shardMask: uint32(shardCount - 1),
	}

	for i := 0; i < shardCount; i++ {
		m.shards[i] = &shard[V]{
			items: make(map[int]V),
		}
	}

	return m
}

// getShard returns the shard owning pos.
func (m *Map[V]) getShard(pos int) *shard[V] {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(pos))
	return m.shards[murmur3.Sum32(buf[:])&m.shardMask]
}

// Count returns the total number of positions.
func (m *Map[V]) Count() int {
	count := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		count += len(shard.items)
		shard.mu.RUnlock()
	}
	return count
}
