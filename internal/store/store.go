// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/verte-zerg/vocabdrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for the key/value state and round history.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps batches serialised.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Apply writes every operation of the batch in one transaction.
func (s *Store) Apply(ctx context.Context, b Batch) (err error) {
	if b.Len() == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, o := range b.ops {
		var query string
		var args []any
		if o.remove {
			query, args, err = sq.Delete("kv").Where(sq.Eq{"key": o.key}).ToSql()
		} else {
			query, args, err = sq.Insert("kv").
				Columns("key", "value").
				Values(o.key, o.value).
				Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
				ToSql()
		}
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to write %q: %w", o.key, err)
		}
	}
	return tx.Commit()
}

type roundRow struct {
	ID         string `db:"id"`
	Mode       string `db:"mode"`
	Filter     string `db:"filter"`
	Size       int    `db:"size"`
	Correct    int    `db:"correct"`
	Wrong      int    `db:"wrong"`
	StartedAt  string `db:"started_at"`
	EndedAt    string `db:"ended_at"`
	DurationMs int64  `db:"duration_ms"`
}

// InsertRound stores a completed round.
func (s *Store) InsertRound(ctx context.Context, rec model.RoundRecord) error {
	query, args, err := sq.Insert("rounds").
		Columns("id", "mode", "filter", "size", "correct", "wrong", "started_at", "ended_at", "duration_ms").
		Values(
			rec.ID,
			rec.Mode,
			rec.Filter,
			rec.Size,
			rec.Correct,
			rec.Wrong,
			rec.StartedAt.UTC().Format(timeLayout),
			rec.EndedAt.UTC().Format(timeLayout),
			rec.DurationMs,
		).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// ListRounds returns completed rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundRecord, error) {
	qb := sq.Select("id", "mode", "filter", "size", "correct", "wrong", "started_at", "ended_at", "duration_ms").
		From("rounds").
		OrderBy("ended_at ASC")
	if cfg.Mode != "" {
		qb = qb.Where(sq.Eq{"mode": cfg.Mode})
	}
	if cfg.Since != nil {
		qb = qb.Where(sq.GtOrEq{"ended_at": cfg.Since.UTC().Format(timeLayout)})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []roundRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	records := make([]model.RoundRecord, 0, len(rows))
	for _, row := range rows {
		startedAt, err := time.Parse(timeLayout, row.StartedAt)
		if err != nil {
			return nil, err
		}
		endedAt, err := time.Parse(timeLayout, row.EndedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, model.RoundRecord{
			ID:         row.ID,
			Mode:       row.Mode,
			Filter:     row.Filter,
			Size:       row.Size,
			Correct:    row.Correct,
			Wrong:      row.Wrong,
			StartedAt:  startedAt,
			EndedAt:    endedAt,
			DurationMs: row.DurationMs,
		})
	}
	return records, nil
}

// ClearRounds deletes the round history.
func (s *Store) ClearRounds(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rounds`)
	return err
}
