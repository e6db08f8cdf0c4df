package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mandelbench/mandelbench/pkg/types"
)

// Entry is a report together with the time it was received.
type Entry struct {
	Report     *types.Report `json:"report"`
	ReceivedAt time.Time     `json:"received_at"`
}

// Store is a thread-safe in-memory report store, keyed by report ID.
// A background goroutine (Run) periodically evicts entries older than the
// configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put stores or replaces the report with rep.ID.
// Callers must not modify rep after calling Put.
func (s *Store) Put(rep *types.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rep.ID] = &Entry{
		Report:     rep,
		ReceivedAt: s.now(),
	}
}

// Get returns the Entry for id if it was received within the TTL. Stale
// entries awaiting eviction are reported as missing, matching List.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok || !e.ReceivedAt.After(s.now().Add(-s.ttl)) {
		return nil, false
	}
	return e, true
}

// List returns all entries received within the TTL, newest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.ReceivedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.After(out[j].ReceivedAt)
		}
		return out[i].Report.ID > out[j].Report.ID
	})
	return out
}

// Reports is List without the receive timestamps.
func (s *Store) Reports() []*types.Report {
	entries := s.List()
	out := make([]*types.Report, len(entries))
	for i, e := range entries {
		out[i] = e.Report
	}
	return out
}

// Count returns the number of entries held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries received before now minus TTL and returns how many
// were removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.ReceivedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the TTL eviction loop, ticking at half the TTL (minimum one
// second). It blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale reports", "count", n, "remaining", s.Count())
			}
		}
	}
}
