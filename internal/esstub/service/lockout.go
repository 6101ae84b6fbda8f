package service

import (
	"strings"
	"sync"
	"time"
)

type failureRecord struct {
	count       int
	lastFailure time.Time
	lockedUntil time.Time
}

// failures counts consecutive failed logins per username.
type failures struct {
	mu      sync.Mutex
	records map[string]*failureRecord
}

func newFailures() *failures {
	return &failures{records: make(map[string]*failureRecord)}
}

func failureKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// locked reports whether username is currently locked out. An elapsed
// lockout clears the record.
func (f *failures) locked(username string, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := failureKey(username)
	rec, ok := f.records[key]
	if !ok || rec.lockedUntil.IsZero() {
		return false
	}
	if now.Before(rec.lockedUntil) {
		return true
	}
	delete(f.records, key)
	return false
}

// fail records a failed login and reports whether it triggered a lockout.
func (f *failures) fail(username string, now time.Time, limit int, lockout time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := failureKey(username)
	rec, ok := f.records[key]
	if !ok {
		rec = &failureRecord{}
		f.records[key] = rec
	}
	rec.count++
	rec.lastFailure = now
	if rec.count >= limit {
		rec.lockedUntil = now.Add(lockout)
		return true
	}
	return false
}

func (f *failures) reset(username string) {
	f.mu.Lock()
	delete(f.records, failureKey(username))
	f.mu.Unlock()
}

// sweep drops records whose lockout has elapsed or whose last failure is
// older than window.
func (f *failures) sweep(now time.Time, window time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var removed int
	for key, rec := range f.records {
		expired := !rec.lockedUntil.IsZero() && !now.Before(rec.lockedUntil)
		stale := rec.lockedUntil.IsZero() && now.Sub(rec.lastFailure) >= window
		if expired || stale {
			delete(f.records, key)
			removed++
		}
	}
	return removed
}
