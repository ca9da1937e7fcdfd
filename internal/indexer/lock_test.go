package indexer

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunLock(t *testing.T) {
	var l RunLock

	assert.False(t, l.Held())
	assert.True(t, l.TryAcquire())
	assert.True(t, l.Held())
	assert.False(t, l.TryAcquire(), "second acquire must fail while held")

	l.Release()
	assert.False(t, l.Held())
	assert.True(t, l.TryAcquire())
}

func TestRunLock_SingleWinner(t *testing.T) {
	var (
		l       RunLock
		winners atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
