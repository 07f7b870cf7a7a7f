package services

import "sync"

// CharacterLocks is a keyed mutex: one lock per character ID.
// Entries are reference counted and dropped when no goroutine holds or
// waits on them, so the map only grows with in-flight characters.
type CharacterLocks struct {
	mu    sync.Mutex
	locks map[int64]*characterLock
}

type characterLock struct {
	mu   sync.Mutex
	refs int
}

// NewCharacterLocks creates an empty lock set.
func NewCharacterLocks() *CharacterLocks {
	return &CharacterLocks{locks: make(map[int64]*characterLock)}
}

// Lock acquires the lock for id and returns its release function.
func (l *CharacterLocks) Lock(id int64) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &characterLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns how many characters currently have a lock entry.
func (l *CharacterLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
