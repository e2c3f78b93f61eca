package application

import (
	"strings"
	"sync"
	"time"
)

// listCache stores recently computed meeting listings to avoid repeated index
// walks and meeting loads for identical queries while bookings remain
// unchanged.
type listCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]listCacheEntry
}

type listCacheEntry struct {
	meetings  []MeetingWithAnswer
	expiresAt time.Time
}

func newListCache(ttl time.Duration, maxEntries int, now func() time.Time) *listCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &listCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]listCacheEntry),
	}
}

func (c *listCache) Get(key string) ([]MeetingWithAnswer, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneListing(entry.meetings), true
}

func (c *listCache) Store(key string, meetings []MeetingWithAnswer) {
	if c == nil {
		return
	}
	cloned := cloneListing(meetings)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = listCacheEntry{meetings: cloned, expiresAt: expiry}
}

func (c *listCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]listCacheEntry)
	c.mu.Unlock()
}

func (c *listCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *listCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneListing(meetings []MeetingWithAnswer) []MeetingWithAnswer {
	if len(meetings) == 0 {
		return nil
	}
	out := make([]MeetingWithAnswer, len(meetings))
	copy(out, meetings)
	return out
}

func buildListCacheKey(params ListMeetingsParams, today time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(params.Username)
	builder.WriteString("|")
	builder.WriteString(string(params.Period))
	builder.WriteString("|")
	if params.Answer != nil {
		builder.WriteString(string(*params.Answer))
	}
	builder.WriteString("|")
	builder.WriteString(today.Format("2006-01-02"))
	return builder.String()
}
