package workpool

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsConcurrencyWhenNonPositive(t *testing.T) {
	p := New(0)
	assert.Greater(t, p.Concurrency(), 0)
}

func TestForkJoinRunsEveryJob(t *testing.T) {
	p := New(4)
	var count int64
	err := p.ForkJoin(100, func(i int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 100, count)
}

func TestForkJoinPropagatesFirstError(t *testing.T) {
	p := New(4)
	boom := errors.New("boom")
	err := p.ForkJoin(10, func(i int) error {
		if i == 5 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForkJoinOrSerialRunsInCallerWhenSerial(t *testing.T) {
	p := New(4)
	var order []int
	err := p.ForkJoinOrSerial(true, 5, func(i int) error {
		order = append(order, i)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestForkJoinOrSerialUsesPoolWhenNotSerial(t *testing.T) {
	p := New(4)
	var count int64
	err := p.ForkJoinOrSerial(false, 50, func(i int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.EqualValues(t, 50, count)
}
