package service

import (
	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/pkg/cmap"
	"github.com/yndnr/padbreak/pkg/xorseq"
)

// Accumulator collects the keystream fragments implied by vote-qualified
// crib alignments of one batch, then resolves them into a KeyMap.
//
// Add may be called from several goroutines at once. Registration is a set
// union per position, so the resolved map does not depend on the order in
// which cribs are added.
type Accumulator struct {
	placeholder byte
	positions   *cmap.Map[domain.Position]
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(opts domain.Options) *Accumulator {
	return &Accumulator{
		placeholder: opts.Placeholder,
		positions:   cmap.New[domain.Position](),
	}
}

// Add registers the key bytes implied by crib at every (message, offset)
// whose counter reached the number of messages in the batch, i.e. the crib
// was corroborated by every comparison and never disproved.
//
// The implied fragment is ciphertext XOR crib: with the crib standing in
// for the plaintext, what remains is the keystream. Messages shorter than
// the crib contribute nothing. Add returns the number of alignments accepted.
func (a *Accumulator) Add(crib xorseq.Sequence, votes Votes, messages []xorseq.Sequence) int {
	threshold := int32(len(messages))
	accepted := 0

	for idx, msg := range messages {
		if msg.Len() < crib.Len() {
			continue
		}
		for off, n := range votes[idx] {
			if n < threshold {
				continue
			}
			accepted++

			subkey := msg.Slice(off).Combine(crib, a.placeholder)
			for k := 0; k < subkey.Len(); k++ {
				a.propose(off+k, byte(subkey.At(k)))
			}
		}
	}
	return accepted
}

func (a *Accumulator) propose(pos int, b byte) {
	a.positions.Upsert(pos, domain.Candidate(b), func(cur domain.Position, exists bool) domain.Position {
		if exists {
			return cur.Propose(b)
		}
		return cur
	})
}

// Resolve keeps the single-candidate positions and drops the conflicts.
// It returns the resolved map and the number of conflicts dropped.
func (a *Accumulator) Resolve() (domain.KeyMap, int) {
	return domain.KeyMapFromPositions(a.positions.Snapshot())
}
