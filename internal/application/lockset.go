package application

import (
	"sort"
	"sync"
)

// keyedLocks provides advisory mutual exclusion over string keys. Acquire
// sorts and deduplicates the key set so that concurrent operations touching
// overlapping rooms and users always lock in the same order.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*lockEntry)}
}

// Acquire locks every key in the set and returns a release function. Entries
// are reference counted so the map does not grow without bound.
func (k *keyedLocks) Acquire(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	deduped := sorted[:0]
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		deduped = append(deduped, key)
	}

	entries := make([]*lockEntry, 0, len(deduped))
	for _, key := range deduped {
		k.mu.Lock()
		entry, ok := k.locks[key]
		if !ok {
			entry = &lockEntry{}
			k.locks[key] = entry
		}
		entry.refs++
		k.mu.Unlock()
		entry.mu.Lock()
		entries = append(entries, entry)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			k.mu.Lock()
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(k.locks, deduped[i])
			}
			k.mu.Unlock()
		}
	}
}
