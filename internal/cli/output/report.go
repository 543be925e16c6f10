package output

import (
	"fmt"
	"time"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/pkg/xorseq"
)

// Report is the result document of a recovery run.
type Report struct {
	Key        KeySummary         `json:"key" yaml:"key"`
	Batches    []BatchSummary     `json:"batches" yaml:"batches"`
	Plaintexts []PlaintextPreview `json:"plaintexts,omitempty" yaml:"plaintexts,omitempty"`
	Warnings   []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// KeySummary describes the converged keystream.
type KeySummary struct {
	Length int `json:"length" yaml:"length"`
	Known  int `json:"known" yaml:"known"`

	// Hex renders unknown positions as "??".
	Hex string `json:"hex" yaml:"hex"`
}

// BatchSummary describes one history record.
type BatchSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	Messages  int       `json:"messages" yaml:"messages"`
	Length    int       `json:"length" yaml:"length"`
	Resolved  int       `json:"resolved" yaml:"resolved"`
	Conflicts int       `json:"conflicts" yaml:"conflicts"`
	Revoked   []int     `json:"revoked,omitempty" yaml:"revoked,omitempty"`
	KeyHex    string    `json:"key_hex" yaml:"key_hex"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// PlaintextPreview is one message combined with the final key.
type PlaintextPreview struct {
	Batch string `json:"batch" yaml:"batch"`
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// NewReport summarises a final key and the history that produced it.
func NewReport(final xorseq.Sequence, history []domain.BatchRecord) *Report {
	r := &Report{
		Key: KeySummary{
			Length: final.Len(),
			Known:  final.KnownCount(),
			Hex:    final.Hex(),
		},
		Batches: make([]BatchSummary, 0, len(history)),
	}
	for _, rec := range history {
		r.Batches = append(r.Batches, SummarizeBatch(rec))
	}
	return r
}

// SummarizeBatch converts a history record for display.
func SummarizeBatch(rec domain.BatchRecord) BatchSummary {
	return BatchSummary{
		ID:        rec.ID,
		Label:     rec.Label,
		Messages:  rec.Messages,
		Length:    rec.Length,
		Resolved:  len(rec.Key),
		Conflicts: rec.Conflicts,
		Revoked:   rec.Revoked,
		KeyHex:    rec.Key.Sequence(rec.Length).Hex(),
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
	}
}

// AddPlaintext appends a decrypted message preview.
func (r *Report) AddPlaintext(batch string, index int, text xorseq.Sequence) {
	r.Plaintexts = append(r.Plaintexts, PlaintextPreview{
		Batch: batch,
		Index: index,
		Text:  text.Render(),
	})
}

// AddWarnings records non-fatal problems, deduplicated by message.
func (r *Report) AddWarnings(errs ...error) {
	seen := make(map[string]struct{}, len(r.Warnings))
	for _, w := range r.Warnings {
		seen[w] = struct{}{}
	}
	for _, err := range errs {
		msg := err.Error()
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		r.Warnings = append(r.Warnings, msg)
	}
}

// Tables implements Tabler.
func (r *Report) Tables() []*Table {
	key := &Table{Title: "KEY", Headers: []string{"LENGTH", "KNOWN", "HEX"}}
	key.AddRow(fmt.Sprint(r.Key.Length), fmt.Sprintf("%d/%d", r.Key.Known, r.Key.Length), r.Key.Hex)

	tables := []*Table{key, BatchTable(r.Batches)}

	if len(r.Plaintexts) > 0 {
		pt := &Table{Title: "PLAINTEXTS", Headers: []string{"BATCH", "#", "TEXT"}}
		for _, p := range r.Plaintexts {
			pt.AddRow(p.Batch, fmt.Sprint(p.Index), Printable(p.Text))
		}
		tables = append(tables, pt)
	}

	if len(r.Warnings) > 0 {
		wt := &Table{Title: "WARNINGS"}
		for _, w := range r.Warnings {
			wt.AddRow(w)
		}
		tables = append(tables, wt)
	}
	return tables
}

// BatchTable lays out batch summaries, one row per batch.
func BatchTable(batches []BatchSummary) *Table {
	t := &Table{
		Title:   "BATCHES",
		Headers: []string{"ID", "LABEL", "MESSAGES", "LENGTH", "RESOLVED", "CONFLICTS", "REVOKED"},
	}
	for _, b := range batches {
		t.AddRow(
			b.ID,
			orDash(b.Label),
			fmt.Sprint(b.Messages),
			fmt.Sprint(b.Length),
			fmt.Sprint(b.Resolved),
			fmt.Sprint(b.Conflicts),
			intsOrDash(b.Revoked),
		)
	}
	return t
}

// BatchList is a slice of summaries rendered as a single table.
type BatchList []BatchSummary

// Tables implements Tabler.
func (l BatchList) Tables() []*Table {
	return []*Table{BatchTable(l)}
}

// BatchEvent is printed by watch after each batch.
type BatchEvent struct {
	Batch BatchSummary `json:"batch" yaml:"batch"`

	// RevokedPrevious lists positions this batch revoked from the previous
	// batch's key map.
	RevokedPrevious []int      `json:"revoked_previous,omitempty" yaml:"revoked_previous,omitempty"`
	Key             KeySummary `json:"key" yaml:"key"`
}

// Tables implements Tabler. The event renders as a single line.
func (e BatchEvent) Tables() []*Table {
	t := &Table{}
	t.AddRow(
		e.Batch.ID,
		orDash(e.Batch.Label),
		fmt.Sprintf("resolved=%d", e.Batch.Resolved),
		fmt.Sprintf("revoked=%s", intsOrDash(e.RevokedPrevious)),
		fmt.Sprintf("known=%d/%d", e.Key.Known, e.Key.Length),
		e.Key.Hex,
	)
	return []*Table{t}
}
