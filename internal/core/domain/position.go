package domain

// PositionKind tags the resolution state of one key-stream position.
type PositionKind uint8

const (
	// PositionUnknown has no evidence yet.
	PositionUnknown PositionKind = iota
	// PositionCandidate has collected one or more candidate bytes.
	PositionCandidate
	// PositionResolved settled on exactly one byte.
	PositionResolved
	// PositionConflict saw two or more distinct bytes and stays unresolved.
	PositionConflict
)

// String returns the kind name.
func (k PositionKind) String() string {
	switch k {
	case PositionUnknown:
		return "unknown"
	case PositionCandidate:
		return "candidate"
	case PositionResolved:
		return "resolved"
	case PositionConflict:
		return "conflict"
	default:
		return "invalid"
	}
}

// Position is the resolution state of a key-stream position.
//
// Transitions:
//
//	Unknown   --Propose(b)--> Candidate{b}
//	Candidate --Propose(b)--> Candidate ∪ {b}
//	Candidate --Resolve-->    Resolved (one member) | Conflict (two or more)
//	Conflict  --any-->        Conflict
//
// Union merges two states the same way; a Resolved operand counts as its
// single candidate, so the result must be resolved again. Union is
// commutative and associative, so partial states built on different
// goroutines can be reduced in any order.
type Position struct {
	kind       PositionKind
	candidates ByteSet
}

// Candidate returns a Candidate position holding b.
func Candidate(b byte) Position {
	return Position{kind: PositionCandidate, candidates: NewByteSet(b)}
}

// Kind returns the state tag.
func (p Position) Kind() PositionKind {
	return p.kind
}

// Candidates returns the candidate bytes collected so far.
func (p Position) Candidates() ByteSet {
	return p.candidates
}

// Value returns the resolved byte.
func (p Position) Value() (byte, bool) {
	if p.kind != PositionResolved {
		return 0, false
	}
	return p.candidates.First()
}

// Propose adds candidate b.
func (p Position) Propose(b byte) Position {
	return p.Union(Candidate(b))
}

// Union merges the evidence of two states.
func (p Position) Union(other Position) Position {
	if p.kind == PositionConflict || other.kind == PositionConflict {
		return Position{kind: PositionConflict, candidates: p.candidates.Union(other.candidates)}
	}
	if other.kind == PositionUnknown {
		return p
	}
	if p.kind == PositionUnknown {
		return other
	}

	return Position{kind: PositionCandidate, candidates: p.candidates.Union(other.candidates)}
}

// Resolve settles a Candidate into Resolved or Conflict.
func (p Position) Resolve() Position {
	if p.kind != PositionCandidate {
		return p
	}
	if p.candidates.Len() == 1 {
		return Position{kind: PositionResolved, candidates: p.candidates}
	}
	return Position{kind: PositionConflict, candidates: p.candidates}
}
