package pipeline

import "sync"

// sessionLocks hands out one mutex per session id. Entries are dropped once
// no goroutine holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock blocks until session is free and returns the matching unlock
func (l *sessionLocks) lock(session string) func() {
	l.mu.Lock()
	sl, ok := l.locks[session]
	if !ok {
		sl = &sessionLock{}
		l.locks[session] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, session)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
