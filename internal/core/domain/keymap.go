package domain

import (
	"sort"

	"github.com/yndnr/padbreak/pkg/xorseq"
)

// KeyMap is a resolved sparse key map: absolute key-stream position to
// key byte. Every entry is single-valued; conflicts never enter a KeyMap.
type KeyMap map[int]byte

// KeyMapFromPositions keeps the Resolved entries of states and counts the
// Conflict entries it drops.
func KeyMapFromPositions(states map[int]Position) (KeyMap, int) {
	km := make(KeyMap, len(states))
	conflicts := 0
	for pos, st := range states {
		st = st.Resolve()
		switch st.Kind() {
		case PositionResolved:
			b, _ := st.Value()
			km[pos] = b
		case PositionConflict:
			conflicts++
		}
	}
	return km, conflicts
}

// Clone returns an independent copy.
func (k KeyMap) Clone() KeyMap {
	out := make(KeyMap, len(k))
	for pos, b := range k {
		out[pos] = b
	}
	return out
}

// Revoke removes pos and reports whether it was present.
func (k KeyMap) Revoke(pos int) bool {
	if _, ok := k[pos]; !ok {
		return false
	}
	delete(k, pos)
	return true
}

// Positions returns the resolved positions in ascending order.
func (k KeyMap) Positions() []int {
	out := make([]int, 0, len(k))
	for pos := range k {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// Span returns one past the highest resolved position.
func (k KeyMap) Span() int {
	span := 0
	for pos := range k {
		if pos+1 > span {
			span = pos + 1
		}
	}
	return span
}

// Sequence renders the map as a keystream estimate of length n with
// Unknown in every unresolved slot. Positions at or beyond n are omitted.
func (k KeyMap) Sequence(n int) xorseq.Sequence {
	s := xorseq.Unknowns(n)
	for pos, b := range k {
		if pos >= 0 && pos < n {
			s.SetByte(pos, b)
		}
	}
	return s
}
