package session

import "sync"

// Keyed serialises work per key. The webhook pipeline takes the lock for the
// sender's user id before load-mutate-save, so two concurrent messages from
// the same user are applied one after another while unrelated users proceed
// in parallel.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates an empty lock table.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*userLock)}
}

// Lock blocks until the key's lock is held and returns the unlock function.
// Entries are reference counted and removed once the last holder releases,
// so the table does not grow with the number of users ever seen.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &userLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
