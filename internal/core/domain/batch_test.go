package domain

import (
	"strings"
	"testing"
)

func TestGenerateBatchID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateBatchID()
		if err != nil {
			t.Fatalf("GenerateBatchID() error = %v", err)
		}
		if !strings.HasPrefix(id, BatchIDPrefix) {
			t.Errorf("id %q lacks prefix %q", id, BatchIDPrefix)
		}
		if id != strings.ToLower(id) {
			t.Errorf("id %q is not lowercase", id)
		}
		if !IsValidBatchID(id) {
			t.Errorf("IsValidBatchID(%q) = false", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValidBatchID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"pbb-01arz3ndektsv4rrffq69g5fav", true},
		{"01arz3ndektsv4rrffq69g5fav", false},
		{"pbb-", false},
		{"pbb-not-a-ulid", false},
		{"tmss-01arz3ndektsv4rrffq69g5fav", false},
	}
	for _, tt := range tests {
		if got := IsValidBatchID(tt.id); got != tt.want {
			t.Errorf("IsValidBatchID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNewBatch(t *testing.T) {
	b, err := NewBatch("input.txt", [][]byte{{1, 2, 3}, {4, 5}})
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}
	if b.Label != "input.txt" || len(b.Messages) != 2 {
		t.Errorf("NewBatch() = %+v", b)
	}
	if b.MaxLen() != 3 {
		t.Errorf("MaxLen() = %d, want 3", b.MaxLen())
	}
}

func TestBatchRecord_Clone(t *testing.T) {
	r := BatchRecord{ID: "pbb-x", Key: KeyMap{1: 2}, Revoked: []int{4}}
	c := r.Clone()
	c.Key[1] = 9
	c.Revoked[0] = 7

	if r.Key[1] != 2 || r.Revoked[0] != 4 {
		t.Errorf("Clone() shares storage: %+v", r)
	}
}

func TestGenerateBatchID_Ordered(t *testing.T) {
	prev := ""
	for i := 0; i < 1000; i++ {
		id, err := GenerateBatchID()
		if err != nil {
			t.Fatalf("GenerateBatchID() error = %v", err)
		}
		if id <= prev {
			t.Fatalf("id %q does not sort after %q", id, prev)
		}
		prev = id
	}
}
