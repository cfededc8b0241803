package ledger

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/BaSui01/patternflow/types"
)

// SQLiteStore persists decisions with GORM over the pure-Go SQLite driver,
// so ledgers survive process restarts without cgo.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if necessary) a ledger database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, types.NewError(types.ErrStoreFailure, "failed to open ledger database").WithCause(err)
	}
	if err := db.AutoMigrate(&Decision{}); err != nil {
		return nil, types.NewError(types.ErrStoreFailure, "failed to migrate ledger schema").WithCause(err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, d *Decision) error {
	return s.db.WithContext(ctx).Create(d).Error
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Decision, error) {
	var d Decision
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrDecisionNotFound, "decision not found: "+id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Query implements Store. Tag filtering happens in process: tags are stored
// as a JSON blob and the toy query volumes do not justify SQL-side JSON ops.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]Decision, error) {
	q := s.db.WithContext(ctx).Order("seq asc")
	if f.Actor != "" {
		q = q.Where("actor = ?", f.Actor)
	}
	if !f.Since.IsZero() {
		q = q.Where("recorded_at >= ?", f.Since)
	}

	var rows []Decision
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	var out []Decision
	for i := range rows {
		if f.Tag != "" && !rows[i].HasTag(f.Tag) {
			continue
		}
		out = append(out, rows[i])
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// LastSeq implements Store.
func (s *SQLiteStore) LastSeq(ctx context.Context) (int, error) {
	var d Decision
	err := s.db.WithContext(ctx).Order("seq desc").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return d.Seq, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
