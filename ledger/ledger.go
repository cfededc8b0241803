// Package ledger provides the decision ledger: an append-style log of
// decision records with DEC-NNN identifiers and filterable queries.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

// Decision is a single ledger record.
type Decision struct {
	ID         string    `json:"id" gorm:"primaryKey"` // DEC-NNN
	Seq        int       `json:"seq" gorm:"uniqueIndex"`
	Actor      string    `json:"actor" gorm:"index"`
	Title      string    `json:"title"`
	Rationale  string    `json:"rationale,omitempty"`
	Tags       []string  `json:"tags,omitempty" gorm:"serializer:json"`
	RecordedAt time.Time `json:"recorded_at" gorm:"index"`
}

// HasTag reports whether the decision carries the given tag (exact,
// case-insensitive).
func (d *Decision) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Filter narrows ledger queries. Zero values match everything.
type Filter struct {
	Actor string
	Tag   string
	Since time.Time
	Limit int
}

// Match reports whether the decision passes the filter (Limit excluded).
func (f Filter) Match(d *Decision) bool {
	if f.Actor != "" && d.Actor != f.Actor {
		return false
	}
	if f.Tag != "" && !d.HasTag(f.Tag) {
		return false
	}
	if !f.Since.IsZero() && d.RecordedAt.Before(f.Since) {
		return false
	}
	return true
}

// Store persists decisions. Implementations must return records in
// ascending Seq order from Query.
type Store interface {
	Append(ctx context.Context, d *Decision) error
	Get(ctx context.Context, id string) (*Decision, error)
	Query(ctx context.Context, f Filter) ([]Decision, error)
	LastSeq(ctx context.Context) (int, error)
	Close() error
}

// Ledger assigns strictly monotonically increasing DEC-NNN identifiers per
// instance and delegates persistence to a Store.
type Ledger struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	seq    int
	closed bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a ledger on top of a store, resuming the sequence from the
// store's last persisted record.
func New(ctx context.Context, store Store, logger *zap.Logger, opts ...Option) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	last, err := store.LastSeq(ctx)
	if err != nil {
		return nil, types.NewError(types.ErrStoreFailure, "failed to read last sequence").WithCause(err)
	}
	l := &Ledger{
		store:  store,
		logger: logger.With(zap.String("component", "decision_ledger")),
		now:    time.Now,
		seq:    last,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// FormatID renders a sequence number as a DEC-NNN identifier. Width is
// padded to three digits and grows naturally past DEC-999.
func FormatID(seq int) string {
	return fmt.Sprintf("DEC-%03d", seq)
}

// RecordDecision appends a decision and returns it with its assigned ID.
func (l *Ledger) RecordDecision(ctx context.Context, d Decision) (*Decision, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "decision title is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, types.NewError(types.ErrLedgerClosed, "ledger is closed")
	}

	l.seq++
	d.Seq = l.seq
	d.ID = FormatID(l.seq)
	d.RecordedAt = l.now()

	if err := l.store.Append(ctx, &d); err != nil {
		l.seq-- // sequence numbers are only consumed by persisted records
		return nil, types.NewError(types.ErrStoreFailure, "failed to append decision").WithCause(err)
	}

	l.logger.Debug("decision recorded",
		zap.String("id", d.ID),
		zap.String("actor", d.Actor),
	)
	return &d, nil
}

// Get returns a decision by ID.
func (l *Ledger) Get(ctx context.Context, id string) (*Decision, error) {
	return l.store.Get(ctx, id)
}

// List returns up to limit decisions in append order (all when limit <= 0).
func (l *Ledger) List(ctx context.Context, limit int) ([]Decision, error) {
	return l.store.Query(ctx, Filter{Limit: limit})
}

// ByActor returns decisions recorded by the given actor.
func (l *Ledger) ByActor(ctx context.Context, actor string) ([]Decision, error) {
	return l.store.Query(ctx, Filter{Actor: actor})
}

// ByTag returns decisions carrying the given tag.
func (l *Ledger) ByTag(ctx context.Context, tag string) ([]Decision, error) {
	return l.store.Query(ctx, Filter{Tag: tag})
}

// Since returns decisions recorded at or after t.
func (l *Ledger) Since(ctx context.Context, t time.Time) ([]Decision, error) {
	return l.store.Query(ctx, Filter{Since: t})
}

// Close closes the ledger and its store. Further RecordDecision calls fail.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.store.Close()
}
