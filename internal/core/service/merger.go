package service

import (
	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/pkg/xorseq"
)

// MergeKeyMaps combines per-batch key maps. A position is kept only when
// every map that covers it proposes the same byte; disagreeing positions are
// dropped. It returns the merged map and the number of positions dropped.
func MergeKeyMaps(keys []domain.KeyMap) (domain.KeyMap, int) {
	states := make(map[int]domain.Position)
	for _, km := range keys {
		for pos, b := range km {
			states[pos] = states[pos].Propose(b)
		}
	}
	return domain.KeyMapFromPositions(states)
}

// Merge combines per-batch key maps into the final key of the given length.
// Positions without unanimous agreement stay Unknown.
func Merge(keys []domain.KeyMap, length int) xorseq.Sequence {
	merged, _ := MergeKeyMaps(keys)
	return merged.Sequence(length)
}
