package recommender

import (
	"sync"
	"time"
)

// profileCache holds built profiles keyed by student id. Entries expire
// after the configured TTL and can be dropped explicitly when new completed
// results land for a student. An absent profile (nil) is cached too, so a
// brand new student does not rebuild on every request.
type profileCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]profileEntry
}

type profileEntry struct {
	profile   *Profile
	expiresAt time.Time
}

func newProfileCache(ttl time.Duration) *profileCache {
	return &profileCache{
		ttl:     ttl,
		entries: make(map[uint]profileEntry),
	}
}

func (pc *profileCache) Get(studentID uint) (*Profile, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	entry, ok := pc.entries[studentID]
	if !ok {
		return nil, false
	}
	if pc.ttl > 0 && time.Now().After(entry.expiresAt) {
		delete(pc.entries, studentID)
		return nil, false
	}
	return entry.profile, true
}

func (pc *profileCache) Set(studentID uint, profile *Profile) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.entries[studentID] = profileEntry{
		profile:   profile,
		expiresAt: time.Now().Add(pc.ttl),
	}
}

func (pc *profileCache) Invalidate(studentID uint) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	delete(pc.entries, studentID)
}
