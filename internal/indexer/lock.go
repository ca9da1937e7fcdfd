package indexer

import "sync/atomic"

// RunLock guards against overlapping index builds without blocking callers.
// The zero value is unlocked.
type RunLock struct {
	held atomic.Bool
}

// TryAcquire takes the lock if it is free and reports whether it did
func (l *RunLock) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release frees the lock. Only the caller whose TryAcquire succeeded may call it.
func (l *RunLock) Release() {
	l.held.Store(false)
}

// Held reports whether a build currently owns the lock
func (l *RunLock) Held() bool {
	return l.held.Load()
}
