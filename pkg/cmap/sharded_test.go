package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestShardCount(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := newWithShards[int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("newWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func appendByte(m *Map[[]byte], pos int, b byte) {
	m.Upsert(pos, []byte{b}, func(cur []byte, exists bool) []byte {
		if !exists {
			return cur
		}
		return append(cur, b)
	})
}

func TestUpsert(t *testing.T) {
	m := New[[]byte]()

	appendByte(m, 7, 'a')
	appendByte(m, 7, 'b')
	appendByte(m, 8, 'c')

	snap := m.Snapshot()
	if string(snap[7]) != "ab" {
		t.Errorf("position 7 = %q, want %q", snap[7], "ab")
	}
	if string(snap[8]) != "c" {
		t.Errorf("position 8 = %q, want %q", snap[8], "c")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestSnapshot_Detached(t *testing.T) {
	m := New[[]byte]()
	appendByte(m, 1, 'a')
	appendByte(m, 2, 'b')

	snap := m.Snapshot()
	appendByte(m, 3, 'c')

	if len(snap) != 2 || string(snap[1]) != "a" || string(snap[2]) != "b" {
		t.Errorf("Snapshot() = %q", snap)
	}
}

func TestRange_Stop(t *testing.T) {
	m := New[int]()
	for i := 0; i < 50; i++ {
		m.Upsert(i, i, func(v int, _ bool) int { return v })
	}

	visited := 0
	m.Range(func(int, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("Range visited %d entries after stop, want 10", visited)
	}
}

func TestShards_Spread(t *testing.T) {
	m := newWithShards[int](4)
	for i := 0; i < 100; i++ {
		m.Upsert(i, i, func(v int, _ bool) int { return v })
	}

	total := 0
	for i, s := range m.shards {
		if len(s.items) == 0 {
			t.Errorf("shard %d is empty after 100 positions", i)
		}
		total += len(s.items)
	}
	if total != 100 {
		t.Errorf("total entries = %d, want 100", total)
	}
}

func TestConcurrentUpsert(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup
	const goroutines = 32
	const positions = 200

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p < positions; p++ {
				m.Upsert(p, 1, func(cur int, exists bool) int {
					if exists {
						return cur + 1
					}
					return cur
				})
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if len(snap) != positions {
		t.Fatalf("Snapshot() has %d positions, want %d", len(snap), positions)
	}
	for p := 0; p < positions; p++ {
		if snap[p] != goroutines {
			t.Fatalf("position %d = %d, want %d", p, snap[p], goroutines)
		}
	}
}
