// Package memory provides the structured-memory manager: a two-tier store
// where important entries persist and unimportant ones are evicted.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

// Tier identifies which storage tier an entry lives in.
type Tier string

const (
	TierShortTerm Tier = "short_term"
	TierLongTerm  Tier = "long_term"
)

// Entry is a single memory record.
type Entry struct {
	ID          string         `json:"id"`
	Content     string         `json:"content"`
	Keywords    []string       `json:"keywords,omitempty"`
	Importance  float64        `json:"importance"`
	Tier        Tier           `json:"tier"`
	AccessCount int            `json:"access_count"`
	CreatedAt   time.Time      `json:"created_at"`
	LastAccess  time.Time      `json:"last_access"`
	Summary     bool           `json:"summary,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// TokenCounter is the minimal token counting interface used for
// context prompt budgeting.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// Summarizer compacts a batch of memory contents into one summary.
// An LLM-backed implementation can be plugged in; the manager falls
// back to deterministic concatenation when nil.
type Summarizer interface {
	Summarize(ctx context.Context, contents []string) (string, error)
}

// Config configures a Manager.
type Config struct {
	// ShortTermCapacity bounds the short-term tier. When full, the
	// oldest entry is evicted.
	ShortTermCapacity int

	// LongTermThreshold is the importance at or above which an evicted
	// entry is promoted to long-term storage instead of being dropped.
	LongTermThreshold float64

	// SummarizeAfter is the age past which short-term entries are folded
	// into a summary by SummarizeOldMemories.
	SummarizeAfter time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ShortTermCapacity: 64,
		LongTermThreshold: 0.7,
		SummarizeAfter:    30 * time.Minute,
	}
}

// Manager is the two-tier memory store with a keyword index spanning
// both tiers. All methods are safe for concurrent use.
type Manager struct {
	config     Config
	summarizer Summarizer
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.RWMutex
	seq       int
	shortTerm map[string]*Entry
	longTerm  map[string]*Entry
	index     map[string]map[string]struct{} // keyword -> entry IDs
}

// NewManager creates a memory manager.
func NewManager(config Config, summarizer Summarizer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ShortTermCapacity <= 0 {
		config.ShortTermCapacity = DefaultConfig().ShortTermCapacity
	}
	if config.SummarizeAfter <= 0 {
		config.SummarizeAfter = DefaultConfig().SummarizeAfter
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		config:     config,
		summarizer: summarizer,
		logger:     logger.With(zap.String("component", "memory_manager")),
		now:        now,
		shortTerm:  make(map[string]*Entry),
		longTerm:   make(map[string]*Entry),
		index:      make(map[string]map[string]struct{}),
	}
}

// Add stores an entry in the short-term tier and indexes its keywords.
// Keywords are derived from the content when not supplied. Returns the
// assigned entry ID.
func (m *Manager) Add(ctx context.Context, e Entry) (string, error) {
	if strings.TrimSpace(e.Content) == "" {
		return "", types.NewError(types.ErrInvalidRequest, "memory content is empty")
	}
	if e.Importance < 0 || e.Importance > 1 {
		return "", types.NewError(types.ErrInvalidRequest, "importance must be in [0, 1]")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	e.ID = fmt.Sprintf("mem_%d", m.seq)
	e.Tier = TierShortTerm
	e.CreatedAt = m.now()
	e.LastAccess = e.CreatedAt
	if len(e.Keywords) == 0 {
		e.Keywords = ExtractKeywords(e.Content)
	}

	m.shortTerm[e.ID] = &e
	m.indexEntry(&e)

	if len(m.shortTerm) > m.config.ShortTermCapacity {
		m.evictLocked()
	}

	m.logger.Debug("memory added",
		zap.String("id", e.ID),
		zap.Float64("importance", e.Importance),
		zap.Int("keywords", len(e.Keywords)),
	)
	return e.ID, nil
}

// evictLocked removes the oldest short-term entry, promoting it to
// long-term storage when its importance clears the threshold. Ties are
// broken by lowest importance.
func (m *Manager) evictLocked() {
	var victim *Entry
	for _, e := range m.shortTerm {
		if victim == nil ||
			e.CreatedAt.Before(victim.CreatedAt) ||
			(e.CreatedAt.Equal(victim.CreatedAt) && e.Importance < victim.Importance) {
			victim = e
		}
	}
	if victim == nil {
		return
	}

	delete(m.shortTerm, victim.ID)

	if victim.Importance >= m.config.LongTermThreshold {
		victim.Tier = TierLongTerm
		m.longTerm[victim.ID] = victim
		m.logger.Debug("memory promoted to long-term", zap.String("id", victim.ID))
		return
	}

	m.unindexEntry(victim)
	m.logger.Debug("memory evicted", zap.String("id", victim.ID))
}

// Get returns an entry by ID from either tier.
func (m *Manager) Get(id string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.shortTerm[id]; ok {
		return *e, true
	}
	if e, ok := m.longTerm[id]; ok {
		return *e, true
	}
	return Entry{}, false
}

// RetrieveRelevant returns up to limit entries whose keywords intersect the
// query's keywords, across both tiers, ranked by importance then recency.
// Matched entries have their access stats bumped.
func (m *Manager) RetrieveRelevant(ctx context.Context, query string, limit int) []Entry {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	var matched []*Entry
	for _, kw := range keywords {
		for id := range m.index[kw] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if e, ok := m.shortTerm[id]; ok {
				matched = append(matched, e)
			} else if e, ok := m.longTerm[id]; ok {
				matched = append(matched, e)
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Importance != matched[j].Importance {
			return matched[i].Importance > matched[j].Importance
		}
		return matched[i].LastAccess.After(matched[j].LastAccess)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	now := m.now()
	out := make([]Entry, 0, len(matched))
	for _, e := range matched {
		e.AccessCount++
		e.LastAccess = now
		out = append(out, *e)
	}
	return out
}

// BuildContextPrompt assembles a prompt section from entries relevant to the
// query, bounded by tokenBudget as measured by counter. A nil counter falls
// back to a character-based estimate.
func (m *Manager) BuildContextPrompt(ctx context.Context, query string, tokenBudget int, counter TokenCounter) (string, error) {
	entries := m.RetrieveRelevant(ctx, query, 0)
	if len(entries) == 0 {
		return "", nil
	}

	count := func(s string) (int, error) {
		if counter != nil {
			return counter.CountTokens(s)
		}
		// rough estimate: one token per 4 characters
		return (len(s) + 3) / 4, nil
	}

	var b strings.Builder
	b.WriteString("Relevant context:\n")
	used, err := count(b.String())
	if err != nil {
		return "", types.NewError(types.ErrTokenizerError, "token counting failed").WithCause(err)
	}

	for _, e := range entries {
		line := "- " + e.Content + "\n"
		n, err := count(line)
		if err != nil {
			return "", types.NewError(types.ErrTokenizerError, "token counting failed").WithCause(err)
		}
		if tokenBudget > 0 && used+n > tokenBudget {
			break
		}
		b.WriteString(line)
		used += n
	}
	return b.String(), nil
}

// SummarizeOldMemories folds short-term entries older than SummarizeAfter
// into a single summary entry carrying the max importance of its sources.
// Returns the number of entries summarized.
func (m *Manager) SummarizeOldMemories(ctx context.Context) (int, error) {
	m.mu.Lock()
	cutoff := m.now().Add(-m.config.SummarizeAfter)
	var old []*Entry
	for _, e := range m.shortTerm {
		if e.CreatedAt.Before(cutoff) && !e.Summary {
			old = append(old, e)
		}
	}
	if len(old) < 2 {
		m.mu.Unlock()
		return 0, nil
	}
	sort.Slice(old, func(i, j int) bool { return old[i].CreatedAt.Before(old[j].CreatedAt) })

	contents := make([]string, len(old))
	maxImportance := 0.0
	for i, e := range old {
		contents[i] = e.Content
		if e.Importance > maxImportance {
			maxImportance = e.Importance
		}
	}
	m.mu.Unlock()

	var summary string
	var err error
	if m.summarizer != nil {
		summary, err = m.summarizer.Summarize(ctx, contents)
		if err != nil {
			return 0, types.NewError(types.ErrInternalError, "summarization failed").WithCause(err)
		}
	} else {
		summary = "Summary: " + strings.Join(contents, " / ")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Entries may have been evicted between the two critical sections;
	// only remove the ones still present.
	removed := 0
	for _, e := range old {
		if _, ok := m.shortTerm[e.ID]; !ok {
			continue
		}
		delete(m.shortTerm, e.ID)
		m.unindexEntry(e)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}

	m.seq++
	se := &Entry{
		ID:         fmt.Sprintf("mem_%d", m.seq),
		Content:    summary,
		Keywords:   ExtractKeywords(summary),
		Importance: maxImportance,
		Tier:       TierShortTerm,
		CreatedAt:  m.now(),
		LastAccess: m.now(),
		Summary:    true,
	}
	m.shortTerm[se.ID] = se
	m.indexEntry(se)

	m.logger.Info("old memories summarized",
		zap.Int("folded", removed),
		zap.String("summary_id", se.ID),
	)
	return removed, nil
}

// Stats reports per-tier entry counts.
func (m *Manager) Stats() (shortTerm, longTerm int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shortTerm), len(m.longTerm)
}

func (m *Manager) indexEntry(e *Entry) {
	for _, kw := range e.Keywords {
		ids, ok := m.index[kw]
		if !ok {
			ids = make(map[string]struct{})
			m.index[kw] = ids
		}
		ids[e.ID] = struct{}{}
	}
}

func (m *Manager) unindexEntry(e *Entry) {
	for _, kw := range e.Keywords {
		if ids, ok := m.index[kw]; ok {
			delete(ids, e.ID)
			if len(ids) == 0 {
				delete(m.index, kw)
			}
		}
	}
}
