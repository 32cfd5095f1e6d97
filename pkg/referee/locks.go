package referee

import (
	"context"
	"sync"
)

// lockTable hands out one lock per match
// Entries are reference counted and removed once nobody holds or waits for them.
type lockTable struct {
	lock  sync.Mutex
	locks map[string]*matchLock
}

type matchLock struct {
	sem  chan struct{}
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[string]*matchLock),
	}
}

// acquire blocks until the match's lock is free or ctx is done
// The returned function releases the lock and must be called exactly once.
func (l *lockTable) acquire(ctx context.Context, matchID string) (func(), error) {
	l.lock.Lock()
	ml, found := l.locks[matchID]
	if !found {
		ml = &matchLock{sem: make(chan struct{}, 1)}
		l.locks[matchID] = ml
	}
	ml.refs++
	l.lock.Unlock()

	select {
	case ml.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(matchID, ml)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ml.sem
			l.unref(matchID, ml)
		})
	}, nil
}

func (l *lockTable) unref(matchID string, ml *matchLock) {
	l.lock.Lock()
	defer l.lock.Unlock()

	ml.refs--
	if ml.refs == 0 {
		delete(l.locks, matchID)
	}
}

// size returns the number of matches with a held or awaited lock
func (l *lockTable) size() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.locks)
}
