package compare

import (
	"sync"
	"time"
)

// Store holds the joined datasets served by the API. Datasets are
// read-only once stored; Replace swaps the whole set.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	order    []string
	loadedAt time.Time
}

func NewStore() *Store {
	return &Store{datasets: make(map[string]*Dataset)}
}

// Replace swaps in a new set of datasets, keeping their order.
func (s *Store) Replace(datasets []*Dataset) {
	m := make(map[string]*Dataset, len(datasets))
	order := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		if _, dup := m[ds.Provider]; !dup {
			order = append(order, ds.Provider)
		}
		m[ds.Provider] = ds
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets = m
	s.order = order
	s.loadedAt = time.Now()
}

func (s *Store) Get(provider string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[provider]
	return ds, ok
}

// Providers returns the stored provider names in load order.
func (s *Store) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns the stored datasets in load order.
func (s *Store) All() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.datasets[p])
	}
	return out
}

// LoadedAt is the time of the last Replace; zero if nothing was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Bounds returns the value-time range covered by all datasets.
func (s *Store) Bounds() (time.Time, time.Time) {
	var lo, hi time.Time
	for _, ds := range s.All() {
		a, b := ds.Bounds()
		if a.IsZero() {
			continue
		}
		if lo.IsZero() || a.Before(lo) {
			lo = a
		}
		if hi.IsZero() || b.After(hi) {
			hi = b
		}
	}
	return lo, hi
}
