package service

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/pkg/xorseq"
)

// cancelCheckInterval is how many pairs a scan processes between context checks.
const cancelCheckInterval = 32

// Votes holds one liveness counter per (message, offset).
//
// A counter of 0 means the crib was disproved at that offset (Dead, which is
// absorbing). A positive counter n means the crib is still plausible there
// and was corroborated n-1 times.
type Votes [][]int32

// newVotes initialises every slot of every message to 1 (alive, unconfirmed).
func newVotes(messages []xorseq.Sequence) Votes {
	v := make(Votes, len(messages))
	for i, m := range messages {
		row := make([]int32, m.Len())
		for j := range row {
			row[j] = 1
		}
		v[i] = row
	}
	return v
}

// At returns the counter for message idx at offset off.
func (v Votes) At(idx, off int) int32 {
	return v[idx][off]
}

// Alive reports whether the crib is still plausible at (idx, off).
func (v Votes) Alive(idx, off int) bool {
	return v[idx][off] > 0
}

// corroborate bumps a live slot; dead slots stay dead.
func (v Votes) corroborate(idx, off int) {
	if v[idx][off] > 0 {
		v[idx][off]++
	}
}

// disprove kills a slot permanently.
func (v Votes) disprove(idx, off int) {
	v[idx][off] = 0
}

// SearchStats counts the work done by one crib search.
type SearchStats struct {
	Pairs     int64 // message pairs compared
	Offsets   int64 // alignments tested
	Pruned    int64 // alignments skipped because both sides were already dead
	Disproved int64 // alignments that produced a disallowed byte
}

// Add accumulates other into s.
func (s *SearchStats) Add(other SearchStats) {
	s.Pairs += other.Pairs
	s.Offsets += other.Offsets
	s.Pruned += other.Pruned
	s.Disproved += other.Disproved
}

type messagePair struct {
	a, b int
}

// Matcher drags one crib across every pair of messages in a batch.
//
// Matcher is stateless between calls and safe for concurrent use.
type Matcher struct {
	opts    domain.Options
	workers int
}

// NewMatcher creates a matcher. workers bounds the goroutines used to scan
// message pairs of a single crib; values below 1 mean sequential.
func NewMatcher(opts domain.Options, workers int) *Matcher {
	if workers < 1 {
		workers = 1
	}
	return &Matcher{
		opts:    opts,
		workers: workers,
	}
}

// Search tests crib against every unordered pair of messages at every
// alignment and returns the resulting liveness counters.
//
// For a pair (i1, i2) the key cancels out of c[i1] XOR c[i2], leaving
// p[i1] XOR p[i2]. XORing the crib into that at offset j recovers the other
// message's plaintext under the hypothesis that the crib sits at j in one of
// them. If every recovered byte is allowed both slots are corroborated,
// otherwise both are killed.
func (m *Matcher) Search(ctx context.Context, crib xorseq.Sequence, messages []xorseq.Sequence) (Votes, SearchStats, error) {
	pairs := pairsOf(len(messages))

	workers := m.workers
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers <= 1 {
		votes := newVotes(messages)
		var stats SearchStats
		if err := m.scan(ctx, crib, messages, pairs, votes, &stats); err != nil {
			return nil, stats, err
		}
		return votes, stats, nil
	}

	return m.searchParallel(ctx, crib, messages, pairs, workers)
}

// searchParallel splits the pairs into contiguous chunks, scans each chunk
// against private counters and reduces them.
//
// The reduction is exact: a slot is dead iff some pair disproved it, in
// which case every scan that saw the pair also killed it; otherwise every
// comparison corroborated it and the counts simply add up.
func (m *Matcher) searchParallel(ctx context.Context, crib xorseq.Sequence, messages []xorseq.Sequence, pairs []messagePair, workers int) (Votes, SearchStats, error) {
	partial := make([]Votes, workers)
	stats := make([]SearchStats, workers)
	chunk := (len(pairs) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(pairs))
		if lo >= hi {
			partial[w] = newVotes(messages)
			continue
		}
		g.Go(func() error {
			partial[w] = newVotes(messages)
			return m.scan(gctx, crib, messages, pairs[lo:hi], partial[w], &stats[w])
		})
	}

	var total SearchStats
	if err := g.Wait(); err != nil {
		return nil, total, err
	}
	for _, s := range stats {
		total.Add(s)
	}

	votes := newVotes(messages)
	for idx := range votes {
		for off := range votes[idx] {
			var sum int32 = 1
			for _, p := range partial {
				n := p[idx][off]
				if n == 0 {
					sum = 0
					break
				}
				sum += n - 1
			}
			votes[idx][off] = sum
		}
	}
	return votes, total, nil
}

// scan runs the pruning loop over pairs, mutating votes in place.
func (m *Matcher) scan(ctx context.Context, crib xorseq.Sequence, messages []xorseq.Sequence, pairs []messagePair, votes Votes, stats *SearchStats) error {
	for k, p := range pairs {
		if k%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		xored := messages[p.a].Combine(messages[p.b], m.opts.Placeholder)
		limit := xored.Len() - crib.Len()
		stats.Pairs++

		for j := 0; j < limit; j++ {
			if !votes.Alive(p.a, j) && !votes.Alive(p.b, j) {
				stats.Pruned++
				continue
			}
			stats.Offsets++

			if m.plausibleAt(xored, j, crib) {
				votes.corroborate(p.a, j)
				votes.corroborate(p.b, j)
				continue
			}
			votes.disprove(p.a, j)
			votes.disprove(p.b, j)
			stats.Disproved++
		}
	}
	return nil
}

// plausibleAt reports whether xored[j:] combined with crib consists of
// allowed bytes only. It is Combine plus an allowed-set check without the
// intermediate allocation.
func (m *Matcher) plausibleAt(xored xorseq.Sequence, j int, crib xorseq.Sequence) bool {
	n := min(xored.Len()-j, crib.Len())
	for k := 0; k < n; k++ {
		x, c := xored.At(j+k), crib.At(k)
		v := int16(m.opts.Placeholder)
		if x != xorseq.Unknown && c != xorseq.Unknown {
			v = x ^ c
		}
		if !m.opts.Allowed.Contains(v) {
			return false
		}
	}
	return true
}

// pairsOf lists the unordered pairs (i1 < i2) of n messages in
// lexicographic order.
func pairsOf(n int) []messagePair {
	if n < 2 {
		return nil
	}
	pairs := make([]messagePair, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pairs = append(pairs, messagePair{a: a, b: b})
		}
	}
	return pairs
}

// searchCounter aggregates SearchStats from concurrent crib searches.
type searchCounter struct {
	pairs, offsets, pruned, disproved atomic.Int64
}

func (c *searchCounter) add(s SearchStats) {
	c.pairs.Add(s.Pairs)
	c.offsets.Add(s.Offsets)
	c.pruned.Add(s.Pruned)
	c.disproved.Add(s.Disproved)
}

func (c *searchCounter) load() SearchStats {
	return SearchStats{
		Pairs:     c.pairs.Load(),
		Offsets:   c.offsets.Load(),
		Pruned:    c.pruned.Load(),
		Disproved: c.disproved.Load(),
	}
}
