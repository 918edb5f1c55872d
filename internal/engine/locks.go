package engine

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errLockTimeout = errors.New("timed out waiting for auction lock")

// keyedLocker hands out one exclusive lock per auction id. Entries are
// reference counted and dropped when nobody holds or waits on them.
type keyedLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	slot chan struct{}
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the lock for key is held, ctx is done or timeout
// elapses. A zero timeout waits for ctx only.
func (l *keyedLocker) acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	entry := l.ref(key)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case entry.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.slot
				l.unref(key, entry)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, entry)
		return nil, ctx.Err()
	case <-expired:
		l.unref(key, entry)
		return nil, errLockTimeout
	}
}

func (l *keyedLocker) ref(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *keyedLocker) unref(key string, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *keyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
