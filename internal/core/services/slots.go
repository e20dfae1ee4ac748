package services

import "sync"

// slotLocks serialises updates to each session's remembered chunk.
// Entries are dropped once no caller holds or waits on them.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	sync.Mutex
	refs int
}

// lock blocks until the slot for id is free and returns its release func.
func (l *slotLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*slotLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &slotLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// held reports how many slots currently have a holder or waiter.
func (l *slotLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
