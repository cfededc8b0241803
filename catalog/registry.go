package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/BaSui01/patternflow/types"
	"go.uber.org/zap"
)

// Registry is the thread-safe in-process view of the catalog.
// It is populated from a manifest and mutated through Upsert/Remove;
// every mutation notifies subscribers so the browsing service can
// push live-reload events.
type Registry struct {
	patterns map[string]types.Pattern
	version  string
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.RWMutex
	subs []chan struct{}
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		patterns: make(map[string]types.Pattern),
		logger:   logger.With(zap.String("component", "catalog_registry")),
		now:      now,
	}
}

// LoadManifest replaces the registry content with the manifest's patterns.
func (r *Registry) LoadManifest(m *types.Manifest) error {
	if err := ValidateManifest(m); err != nil {
		return err
	}

	r.mu.Lock()
	r.patterns = make(map[string]types.Pattern, len(m.Patterns))
	for _, p := range m.Patterns {
		r.patterns[p.ID] = p
	}
	r.version = m.Version
	r.mu.Unlock()

	r.logger.Info("manifest loaded",
		zap.String("version", m.Version),
		zap.Int("patterns", len(m.Patterns)),
	)
	r.notify()
	return nil
}

// Get returns the pattern with the given ID.
func (r *Registry) Get(id string) (types.Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[id]
	return p, ok
}

// List returns all patterns sorted by ID.
func (r *Registry) List() []types.Pattern {
	r.mu.RLock()
	out := make([]types.Pattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns patterns matching a case-insensitive keyword query,
// sorted by ID.
func (r *Registry) Search(query string) []types.Pattern {
	r.mu.RLock()
	var out []types.Pattern
	for _, p := range r.patterns {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upsert inserts or replaces a pattern.
func (r *Registry) Upsert(p types.Pattern) error {
	if !validSlug(p.ID) {
		return types.NewError(types.ErrManifestInvalid, "invalid pattern id")
	}
	if p.Maturity != "" && !types.ValidMaturity(p.Maturity) {
		return types.NewError(types.ErrManifestInvalid, "unknown maturity")
	}

	r.mu.Lock()
	now := r.now()
	if existing, ok := r.patterns[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.patterns[p.ID] = p
	r.mu.Unlock()

	r.notify()
	return nil
}

// Remove deletes a pattern by ID.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	_, ok := r.patterns[id]
	if ok {
		delete(r.patterns, id)
	}
	r.mu.Unlock()

	if ok {
		r.notify()
	}
	return ok
}

// Len returns the number of patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Snapshot exports the registry as a manifest.
func (r *Registry) Snapshot() *types.Manifest {
	r.mu.RLock()
	version := r.version
	r.mu.RUnlock()

	return &types.Manifest{
		Version:     version,
		GeneratedAt: r.now(),
		Patterns:    r.List(),
	}
}

// Subscribe returns a channel that receives a signal after every mutation.
// The channel has capacity 1; coalesced notifications are acceptable for
// live-reload consumers.
func (r *Registry) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel previously returned by Subscribe.
func (r *Registry) Unsubscribe(ch <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subs {
		if (<-chan struct{})(sub) == ch {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
