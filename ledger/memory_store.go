package ledger

import (
	"context"
	"sync"

	"github.com/BaSui01/patternflow/types"
)

// MemoryStore is the in-process Store used by default and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions []Decision
	byID      map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, d *Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[d.ID] = len(s.decisions)
	s.decisions = append(s.decisions, *d)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, types.NewError(types.ErrDecisionNotFound, "decision not found: "+id)
	}
	d := s.decisions[i]
	return &d, nil
}

// Query implements Store. Records are kept in append (Seq) order.
func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Decision
	for i := range s.decisions {
		d := &s.decisions[i]
		if !f.Match(d) {
			continue
		}
		out = append(out, *d)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// LastSeq implements Store.
func (s *MemoryStore) LastSeq(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.decisions) == 0 {
		return 0, nil
	}
	return s.decisions[len(s.decisions)-1].Seq, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
