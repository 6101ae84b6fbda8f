// Package flowstore keeps the portal's in-progress login flows in memory,
// keyed by the id carried in the flow cookie. Flows are never persisted and
// are dropped after an idle period.
package flowstore

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/housekeeping"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

const DefaultTTL = 15 * time.Minute

type entry struct {
	flow     *login.Flow
	lastSeen time.Time
}

// Store maps flow ids to flows.
type Store struct {
	newFlow func() *login.Flow
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	flows map[idx.ID]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store. newFlow builds the flow for each new id.
func New(newFlow func() *login.Flow, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		newFlow: newFlow,
		ttl:     ttl,
		now:     time.Now,
		flows:   make(map[idx.ID]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a fresh flow and returns its id.
func (s *Store) Create() (idx.ID, *login.Flow) {
	now := s.now()
	id := idx.NewAt(now)
	f := s.newFlow()

	s.mu.Lock()
	s.flows[id] = &entry{flow: f, lastSeen: now}
	s.mu.Unlock()

	return id, f
}

// Get returns the flow for id and marks it as seen. An idle flow is
// removed and reported as missing.
func (s *Store) Get(id idx.ID) (*login.Flow, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flows[id]
	if !ok {
		return nil, false
	}
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.flows, id)
		e.flow.ResetToHome()
		return nil, false
	}
	e.lastSeen = now
	return e.flow, true
}

// Delete drops the flow for id and clears anything it held.
func (s *Store) Delete(id idx.ID) {
	s.mu.Lock()
	e, ok := s.flows[id]
	delete(s.flows, id)
	s.mu.Unlock()

	if ok {
		e.flow.ResetToHome()
	}
}

// Len returns the number of live flows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Sweep drops flows idle for longer than the TTL and returns how many went.
func (s *Store) Sweep(now time.Time) int {
	var expired []*login.Flow

	s.mu.Lock()
	for id, e := range s.flows {
		if now.Sub(e.lastSeen) > s.ttl {
			expired = append(expired, e.flow)
			delete(s.flows, id)
		}
	}
	s.mu.Unlock()

	for _, f := range expired {
		f.ResetToHome()
	}
	return len(expired)
}

// HousekeepingTask sweeps idle flows on the housekeeping schedule.
func (s *Store) HousekeepingTask() housekeeping.Task {
	return housekeeping.Task{
		Name: "idle_flows",
		Run: func(_ context.Context, now time.Time) (int, error) {
			return s.Sweep(now), nil
		},
	}
}
