package engine

import "sync"

// userLocks hands out one serialization token per user id. Different
// users proceed fully in parallel; there is no global lock. Tokens are
// reference counted so the map does not grow without bound.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire blocks until the user's token is held.
func (l *userLocks) acquire(userID string) *userLock {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return ul
}

// release must run on every exit path so later requests for the same
// user are not starved.
func (l *userLocks) release(userID string, ul *userLock) {
	ul.mu.Unlock()

	l.mu.Lock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
	l.mu.Unlock()
}
