package domain

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/padbreak/pkg/xorseq"
)

// BatchIDPrefix is the prefix for batch IDs.
const BatchIDPrefix = "pbb-"

// Batch is one group of ciphertexts encrypted under overlapping portions of
// the same keystream.
type Batch struct {
	// ID is the unique batch identifier.
	// Format: pbb-{ulid_lowercase}. ULIDs sort by creation time.
	ID string

	// Label is a human-readable name, typically the source file name.
	Label string

	// Messages are the decoded ciphertexts.
	Messages []xorseq.Sequence
}

// NewBatch creates a batch with a fresh ID from raw ciphertexts.
func NewBatch(label string, ciphertexts [][]byte) (*Batch, error) {
	id, err := GenerateBatchID()
	if err != nil {
		return nil, err
	}

	msgs := make([]xorseq.Sequence, len(ciphertexts))
	for i, c := range ciphertexts {
		msgs[i] = xorseq.FromBytes(c)
	}

	return &Batch{
		ID:       id,
		Label:    label,
		Messages: msgs,
	}, nil
}

// entropy is shared so IDs generated within one millisecond still sort in
// creation order. ulid.MonotonicEntropy is not safe for concurrent use.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateBatchID generates a new batch ID.
func GenerateBatchID() (string, error) {
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	if err != nil {
		return "", ErrStorage.WithDetails("generate batch id").WithCause(err)
	}
	return BatchIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidBatchID reports whether id has the batch ID format.
func IsValidBatchID(id string) bool {
	if !strings.HasPrefix(id, BatchIDPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(id[len(BatchIDPrefix):]))
	return err == nil
}

// MaxLen returns the length of the longest message.
func (b *Batch) MaxLen() int {
	n := 0
	for _, m := range b.Messages {
		if m.Len() > n {
			n = m.Len()
		}
	}
	return n
}

// BatchRecord is one entry of the batch key history.
type BatchRecord struct {
	// ID is the batch ID.
	ID string `json:"id"`

	// Label is the batch label.
	Label string `json:"label"`

	// Messages is the number of ciphertexts in the batch.
	Messages int `json:"messages"`

	// Length is the longest message length of the batch.
	Length int `json:"length"`

	// Key is the batch's resolved key map. A later batch may revoke
	// entries; it never rewrites one to a different byte.
	Key KeyMap `json:"key"`

	// Conflicts is the number of positions dropped as conflicts.
	Conflicts int `json:"conflicts"`

	// Revoked lists positions removed by later batches.
	Revoked []int `json:"revoked,omitempty"`

	// CreatedAt is the processing time in Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// Clone returns a deep copy.
func (r BatchRecord) Clone() BatchRecord {
	out := r
	out.Key = r.Key.Clone()
	if r.Revoked != nil {
		out.Revoked = append([]int(nil), r.Revoked...)
	}
	return out
}
