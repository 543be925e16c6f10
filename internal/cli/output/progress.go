package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRefreshRate is the default number of redraws per second.
const DefaultRefreshRate = 10

// ProgressBar shows crib search progress for one batch at a time.
//
// Redraws are throttled; the final step of a batch is always drawn.
type ProgressBar struct {
	w       io.Writer
	width   int
	limiter *rate.Limiter

	mu      sync.Mutex
	label   string
	current int
	total   int
	drawn   bool
}

// NewProgressBar creates a progress bar redrawing at most perSecond times
// per second. perSecond <= 0 disables throttling.
func NewProgressBar(w io.Writer, perSecond float64) *ProgressBar {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ProgressBar{
		w:       w,
		width:   30,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Update records progress. Its signature matches service.ProgressFunc.
func (p *ProgressBar) Update(current, total int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawn && label != p.label {
		fmt.Fprintln(p.w)
	}
	p.label, p.current, p.total = label, current, total

	if current >= total || p.limiter.Allow() {
		p.render()
	}
}

// Finish ends the current line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

func (p *ProgressBar) render() {
	percent := 1.0
	if p.total > 0 {
		percent = min(float64(p.current)/float64(p.total), 1)
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d cribs)", p.label, bar, percent*100, p.current, p.total)
	p.drawn = true
}
