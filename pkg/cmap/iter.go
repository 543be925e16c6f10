// Package cmap provides a concurrent map keyed by key-stream position.
package cmap

// Range iterates over all position-value pairs in no particular order.
//
// The callback returns false to stop iteration.
func (m *Map[V]) Range(fn func(pos int, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// Snapshot copies the contents into a plain map.
func (m *Map[V]) Snapshot() map[int]V {
	out := make(map[int]V, m.Count())
	m.Range(func(pos int, value V) bool {
		out[pos] = value
		return true
	})
	return out
}

// Upsert atomically updates or inserts a value.
// The callback receives the existing value (or value when absent) and
// whether pos already existed. Returns the stored value.
func (m *Map[V]) Upsert(pos int, value V, fn func(existingValue V, exists bool) V) V {
	shard := m.getShard(pos)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, exists := shard.items[pos]
	if exists {
		value = fn(existing, true)
	} else {
		value = fn(value, false)
	}
	shard.items[pos] = value
	return value
}
