package services

import "sync"

// keyedMutex serializes work per string key. Progress and achievement updates
// must be atomic per (user, article) / (user, achievement) pair while updates
// on different keys proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
// Mutexes are kept for the process lifetime; the key space (active users times
// achievements) is small enough that eviction is not worth the bookkeeping.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
