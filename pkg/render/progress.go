package render

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Progress is the cooperative cancellation and status handle spec.md §5
// requires: "each render carries a progress handle with an atomic cancel
// flag. Workers sample it at tile boundaries and at the start of pixel
// rows; on cancel they drop any partial tile and return." RenderID tags
// every log line and lets a caller correlate a Progress with the render
// request that produced it (grounded on `google/uuid`, used the same way
// by the retrieval pack's `7blacky7-ollama-reverse` to tag long-running
// work).
type Progress struct {
	RenderID uuid.UUID

	cancelled      atomic.Bool
	iterationsDone atomic.Int64
	totalIters     int
}

// NewProgress creates a handle for a render of totalIterations passes.
func NewProgress(totalIterations int) *Progress {
	return &Progress{RenderID: uuid.New(), totalIters: totalIterations}
}

// Cancel requests that the render stop at the next tile or row boundary.
func (p *Progress) Cancel() { p.cancelled.Store(true) }

// Cancelled reports whether Cancel has been called.
func (p *Progress) Cancelled() bool { return p.cancelled.Load() }

// IterationsDone returns how many full-image iterations have completed.
func (p *Progress) IterationsDone() int { return int(p.iterationsDone.Load()) }

// Fraction returns the render's completion fraction in [0,1], 0 when
// the total iteration count is unknown or zero.
func (p *Progress) Fraction() float64 {
	if p.totalIters <= 0 {
		return 0
	}
	done := p.iterationsDone.Load()
	frac := float64(done) / float64(p.totalIters)
	if frac > 1 {
		frac = 1
	}
	return frac
}
