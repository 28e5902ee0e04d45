package usecase

import "sync"

// userLocks hands out one mutex per username so that mutations of the same
// portfolio run one at a time. Entries are dropped when no goroutine holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until the caller owns username's mutex and returns the matching unlock func.
func (l *userLocks) lock(username string) func() {
	l.mu.Lock()
	ul, ok := l.locks[username]
	if !ok {
		ul = &userLock{}
		l.locks[username] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, username)
		}
		l.mu.Unlock()
	}
}

// size reports the number of tracked usernames.
func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
