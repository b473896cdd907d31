package storage

import (
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/pdcheck/internal/models"
)

// DefaultLimit is how many lookups a store keeps before evicting the oldest.
const DefaultLimit = 1000

// LookupStore keeps recent lookups in memory.
type LookupStore struct {
	lookups map[string]*models.Lookup
	order   []string
	limit   int
	mu      sync.RWMutex
}

// New creates a store holding at most limit lookups; limit <= 0 uses
// DefaultLimit.
func New(limit int) *LookupStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &LookupStore{
		lookups: make(map[string]*models.Lookup),
		limit:   limit,
	}
}

func (s *LookupStore) Get(id string) (*models.Lookup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lookup, exists := s.lookups[id]
	return lookup, exists
}

func (s *LookupStore) Set(id string, lookup *models.Lookup) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lookups[id]; !exists {
		s.order = append(s.order, id)
	}
	s.lookups[id] = lookup

	for len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.lookups, oldest)
	}
}

// List returns lookups oldest first.
func (s *LookupStore) List() []*models.Lookup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Lookup, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.lookups[id])
	}
	return result
}

func (s *LookupStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lookups[id]; !exists {
		return false
	}
	delete(s.lookups, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true
}
