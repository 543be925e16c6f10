package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/internal/telemetry/logger"
	"github.com/yndnr/padbreak/pkg/xorseq"
)

// ProgressFunc is invoked once per crib processed with the number of cribs
// done so far, the dictionary size and the batch label. Calls are
// serialised; the callback must not block for long and cannot affect the
// result.
type ProgressFunc func(current, total int, label string)

// Metrics receives engine measurements.
type Metrics interface {
	CribSearched(pairs, offsets, pruned, disproved int64)
	BatchProcessed(elapsed time.Duration, messages, resolved, conflicts, revoked int)
	KeyConverged(known, length int)
}

// HistorySink persists committed batches. Commit receives the previous
// record after revocations (nil when nothing was revoked) and the new
// record; if it fails the batch is not committed in memory either.
type HistorySink interface {
	Commit(ctx context.Context, previous *domain.BatchRecord, record domain.BatchRecord) error
}

type noopMetrics struct{}

func (noopMetrics) CribSearched(int64, int64, int64, int64) {}

func (noopMetrics) BatchProcessed(time.Duration, int, int, int, int) {}

func (noopMetrics) KeyConverged(int, int) {}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers bounds the number of cribs searched concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithPairWorkers bounds the goroutines scanning message pairs of one crib.
func WithPairWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pairWorkers = n
		}
	}
}

// WithProgress sets the per-crib progress callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHistorySink persists every committed batch.
func WithHistorySink(sink HistorySink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// BatchReport describes the outcome of one ProcessBatch call.
type BatchReport struct {
	// Record is the history entry appended for the batch.
	Record domain.BatchRecord

	// PreviousID is the batch whose key map was revalidated, if any.
	PreviousID string

	// Revoked lists the positions revoked from the previous batch's map.
	Revoked []int

	// Accepted is the number of vote-qualified crib alignments.
	Accepted int

	// Stats sums the crib search statistics.
	Stats SearchStats

	// Warnings lists non-fatal irregularities of the batch.
	Warnings []error

	// Elapsed is the processing time.
	Elapsed time.Duration
}

// Engine drives ciphertext batches through crib matching and accumulation,
// revalidates earlier key bytes against new evidence, and merges the
// per-batch key maps into a converged key.
//
// ProcessBatch calls are serialised. Finalize, History and friends may be
// called at any time.
type Engine struct {
	opts        domain.Options
	dict        domain.Dictionary
	workers     int
	pairWorkers int
	progress    ProgressFunc
	logger      logger.Logger
	metrics     Metrics
	sink        HistorySink
	now         func() time.Time

	processMu sync.Mutex

	mu        sync.RWMutex
	history   []domain.BatchRecord
	maxLength int
	warnings  []error
}

// NewEngine creates an engine for the given configuration and crib
// dictionary. Configuration conflicts that make recovery impossible are
// logged and exposed through Warnings; they do not prevent construction.
func NewEngine(opts domain.Options, dict domain.Dictionary, options ...EngineOption) *Engine {
	e := &Engine{
		opts:        opts,
		dict:        dict,
		workers:     runtime.GOMAXPROCS(0),
		pairWorkers: 1,
		logger:      logger.Default(),
		metrics:     noopMetrics{},
		now:         time.Now,
	}
	for _, opt := range options {
		opt(e)
	}

	e.warnings = append(e.warnings, opts.Validate()...)
	if dict.Len() == 0 {
		e.warnings = append(e.warnings, domain.ErrEmptyDictionary)
	}
	for _, w := range e.warnings {
		e.logger.Warn("engine configuration conflict, recovery will find no candidates",
			"code", domain.GetErrorCode(w),
			"error", w)
	}

	return e
}

// Options returns the engine configuration.
func (e *Engine) Options() domain.Options {
	return e.opts
}

// Dictionary returns the crib dictionary.
func (e *Engine) Dictionary() domain.Dictionary {
	return e.dict
}

// ProcessBatch revalidates the most recent key map against the batch,
// searches the batch with every crib and appends the resolved key map to
// the history.
//
// Revocations and the new record are committed together after the search
// succeeds. If ctx is cancelled the history is left exactly as it was and
// the returned error matches domain.ErrBatchCancelled.
func (e *Engine) ProcessBatch(ctx context.Context, batch *domain.Batch) (*BatchReport, error) {
	e.processMu.Lock()
	defer e.processMu.Unlock()

	start := e.now()
	log := e.logger.With("batch_id", batch.ID, "label", batch.Label)
	report := &BatchReport{}
	report.Warnings = e.batchWarnings(batch)
	for _, w := range report.Warnings {
		log.Warn("malformed batch", "code", domain.GetErrorCode(w), "error", w)
	}

	e.mu.RLock()
	var previous *domain.BatchRecord
	if n := len(e.history); n > 0 {
		prev := e.history[n-1]
		previous = &prev
	}
	maxLength := e.maxLength
	e.mu.RUnlock()

	if previous != nil {
		report.PreviousID = previous.ID
		report.Revoked = e.revalidate(previous.Key, maxLength, batch.Messages)
	}

	keyMap, conflicts, accepted, stats, err := e.search(ctx, batch)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn("batch cancelled, history unchanged", "error", err)
			return nil, domain.ErrBatchCancelled.WithCause(err)
		}
		return nil, fmt.Errorf("search batch %s: %w", batch.ID, err)
	}

	record := domain.BatchRecord{
		ID:        batch.ID,
		Label:     batch.Label,
		Messages:  len(batch.Messages),
		Length:    batch.MaxLen(),
		Key:       keyMap,
		Conflicts: conflicts,
		CreatedAt: start.UnixMilli(),
	}

	var revised *domain.BatchRecord
	if previous != nil && len(report.Revoked) > 0 {
		r := previous.Clone()
		for _, pos := range report.Revoked {
			r.Key.Revoke(pos)
		}
		r.Revoked = append(r.Revoked, report.Revoked...)
		revised = &r
	}

	if e.sink != nil {
		if err := e.sink.Commit(ctx, revised, record); err != nil {
			log.Error("persist batch failed, batch not committed", "error", err)
			return nil, fmt.Errorf("persist batch %s: %w", batch.ID, err)
		}
	}

	e.mu.Lock()
	if revised != nil {
		e.history[len(e.history)-1] = *revised
	}
	e.history = append(e.history, record)
	if record.Length > e.maxLength {
		e.maxLength = record.Length
	}
	e.warnings = append(e.warnings, report.Warnings...)
	e.mu.Unlock()

	report.Record = record.Clone()
	report.Accepted = accepted
	report.Stats = stats
	report.Elapsed = e.now().Sub(start)

	final := e.Finalize()
	e.metrics.BatchProcessed(report.Elapsed, len(batch.Messages), len(keyMap), conflicts, len(report.Revoked))
	e.metrics.KeyConverged(final.KnownCount(), final.Len())

	log.Info("batch processed",
		"messages", len(batch.Messages),
		"accepted", accepted,
		"resolved", len(keyMap),
		"conflicts", conflicts,
		"revoked", len(report.Revoked),
		"key_known", final.KnownCount(),
		"key_length", final.Len(),
		"elapsed", report.Elapsed)

	return report, nil
}

// batchWarnings reports malformed-batch conditions. They never stop
// processing.
func (e *Engine) batchWarnings(batch *domain.Batch) []error {
	var warnings []error
	switch len(batch.Messages) {
	case 0:
		return append(warnings, domain.ErrEmptyBatch.WithDetails(batch.Label))
	case 1:
		warnings = append(warnings, domain.ErrSingleMessageBatch.WithDetails(batch.Label))
	}

	shortest := e.dict.MinLen()
	for i, m := range batch.Messages {
		if m.Len() < shortest {
			warnings = append(warnings, domain.ErrShortMessage.WithDetails(
				fmt.Sprintf("%s message %d has %d bytes, shortest crib has %d", batch.Label, i, m.Len(), shortest)))
		}
	}
	return warnings
}

// revalidate decodes every message with the previous key map and returns,
// in ascending order, the known positions that decode to a disallowed byte
// in at least one message.
func (e *Engine) revalidate(key domain.KeyMap, length int, messages []xorseq.Sequence) []int {
	if len(key) == 0 {
		return nil
	}
	if span := key.Span(); span > length {
		length = span
	}
	keySeq := key.Sequence(length)

	bad := make(map[int]struct{})
	for _, msg := range messages {
		decoded := msg.Combine(keySeq, e.opts.Placeholder)
		for p := 0; p < decoded.Len(); p++ {
			if !keySeq.Known(p) {
				continue
			}
			if !e.opts.Allowed.Contains(decoded.At(p)) {
				bad[p] = struct{}{}
			}
		}
	}

	if len(bad) == 0 {
		return nil
	}
	revoked := make([]int, 0, len(bad))
	for p := range bad {
		revoked = append(revoked, p)
	}
	sort.Ints(revoked)
	return revoked
}

// search runs every crib of the dictionary against the batch on a bounded
// worker pool and resolves the accumulated candidates.
func (e *Engine) search(ctx context.Context, batch *domain.Batch) (domain.KeyMap, int, int, SearchStats, error) {
	acc := NewAccumulator(e.opts)
	matcher := NewMatcher(e.opts, e.pairWorkers)
	total := e.dict.Len()

	var (
		counter  searchCounter
		accepted int
		acceptMu sync.Mutex

		progressMu sync.Mutex
		done       int
	)

	if len(batch.Messages) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)

		for i := 0; i < total; i++ {
			crib := e.dict.At(i)
			g.Go(func() error {
				votes, stats, err := matcher.Search(gctx, crib, batch.Messages)
				if err != nil {
					return err
				}
				n := acc.Add(crib, votes, batch.Messages)
				counter.add(stats)
				e.metrics.CribSearched(stats.Pairs, stats.Offsets, stats.Pruned, stats.Disproved)

				acceptMu.Lock()
				accepted += n
				acceptMu.Unlock()

				if e.progress != nil {
					progressMu.Lock()
					done++
					e.progress(done, total, batch.Label)
					progressMu.Unlock()
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, 0, 0, SearchStats{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, 0, SearchStats{}, err
	}

	keyMap, conflicts := acc.Resolve()
	return keyMap, conflicts, accepted, counter.load(), nil
}

// Finalize merges the history into the final key. Its length is the longest
// message seen; positions without unanimous agreement stay Unknown.
func (e *Engine) Finalize() xorseq.Sequence {
	e.mu.RLock()
	keys := make([]domain.KeyMap, len(e.history))
	for i, r := range e.history {
		keys[i] = r.Key
	}
	length := e.maxLength
	e.mu.RUnlock()

	return Merge(keys, length)
}

// Decrypt combines msg with the current final key. Unrecovered positions
// carry the placeholder byte.
func (e *Engine) Decrypt(msg xorseq.Sequence) xorseq.Sequence {
	return msg.Combine(e.Finalize(), e.opts.Placeholder)
}

// History returns a deep copy of the per-batch records in processing order.
func (e *Engine) History() []domain.BatchRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.BatchRecord, len(e.history))
	for i, r := range e.history {
		out[i] = r.Clone()
	}
	return out
}

// Restore replaces the history with previously persisted records, e.g. when
// resuming a run. Records must be in processing order.
func (e *Engine) Restore(records []domain.BatchRecord) {
	e.processMu.Lock()
	defer e.processMu.Unlock()

	history := make([]domain.BatchRecord, len(records))
	maxLength := 0
	for i, r := range records {
		history[i] = r.Clone()
		if r.Length > maxLength {
			maxLength = r.Length
		}
	}

	e.mu.Lock()
	e.history = history
	e.maxLength = maxLength
	e.mu.Unlock()

	e.logger.Info("history restored", "batches", len(records), "max_length", maxLength)
}

// MaxLength returns the longest message length seen so far.
func (e *Engine) MaxLength() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxLength
}

// Warnings returns the configuration and batch warnings collected so far.
func (e *Engine) Warnings() []error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]error(nil), e.warnings...)
}
