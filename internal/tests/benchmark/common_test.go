package benchmark

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/padbreak/internal/core/domain"
	"github.com/yndnr/padbreak/pkg/padgen"
)

// MessageCounts defines the batch sizes for benchmarking.
var MessageCounts = []int{4, 8, 16, 32}

// SmallMessageCounts for quick benchmarks.
var SmallMessageCounts = []int{4, 8}

// MessageLength is the plaintext length of generated messages.
const MessageLength = 64

var vocabulary = []string{
	"the", "and", "attack", "at", "dawn", "meet", "me", "by", "river",
	"send", "more", "troops", "north", "gate", "is", "open", "tonight",
}

// newPlaintexts builds n deterministic sentences of MessageLength bytes.
func newPlaintexts(n int) [][]byte {
	rng := rand.New(rand.NewPCG(1, uint64(n)))
	out := make([][]byte, n)
	for i := range out {
		var sb strings.Builder
		for sb.Len() < MessageLength {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(vocabulary[rng.IntN(len(vocabulary))])
		}
		out[i] = []byte(sb.String()[:MessageLength])
	}
	return out
}

// newBatch encrypts n generated plaintexts under one keystream.
func newBatch(b *testing.B, n int) *domain.Batch {
	b.Helper()
	pad, err := padgen.New([]byte("benchmark"))
	if err != nil {
		b.Fatalf("padgen.New failed: %v", err)
	}
	batch, err := domain.NewBatch(fmt.Sprintf("bench-%d", n), pad.EncryptAll(newPlaintexts(n)))
	if err != nil {
		b.Fatalf("NewBatch failed: %v", err)
	}
	return batch
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithMessageCounts runs a benchmark function with various batch sizes.
func runWithMessageCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("messages_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
