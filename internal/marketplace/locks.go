package marketplace

import "sync"

// keyedMutex hands out one mutex per request id so the accept transaction and
// everything that races with it (bid creation, cancellation, bid listing)
// serialize per request while distinct requests proceed concurrently.
// Entries are never evicted, so callers must verify a request id exists
// before locking it; the table is then bounded by the number of requests ever
// stored, which is the same bound the stores already carry.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns the unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
