package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgressStartsUncancelledAndAtZeroFraction(t *testing.T) {
	p := NewProgress(10)
	assert.False(t, p.Cancelled())
	assert.Equal(t, 0.0, p.Fraction())
	assert.NotEqual(t, p.RenderID.String(), "")
}

func TestProgressCancelIsObservedAfterCancel(t *testing.T) {
	p := NewProgress(10)
	p.Cancel()
	assert.True(t, p.Cancelled())
}

func TestProgressFractionTracksIterationsDone(t *testing.T) {
	p := NewProgress(4)
	p.iterationsDone.Add(2)
	assert.InDelta(t, 0.5, p.Fraction(), 1e-9)
}

func TestProgressFractionZeroWithUnknownTotal(t *testing.T) {
	p := NewProgress(0)
	p.iterationsDone.Add(5)
	assert.Equal(t, 0.0, p.Fraction())
}

func TestProgressFractionClampsAtOne(t *testing.T) {
	p := NewProgress(2)
	p.iterationsDone.Add(10)
	assert.Equal(t, 1.0, p.Fraction())
}
