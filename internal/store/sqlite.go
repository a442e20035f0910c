package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/argusint/argus-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS baselines (
	key        TEXT PRIMARY KEY,
	mean       REAL NOT NULL,
	variance   REAL NOT NULL,
	count      INTEGER NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	taken_at   DATETIME NOT NULL,
	payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBaseline(ctx context.Context, b model.Baseline) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO baselines (key, mean, variance, count, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET mean = excluded.mean, variance = excluded.variance,
		 count = excluded.count, updated_at = excluded.updated_at`,
		b.Key, b.Mean, b.Variance, b.Count, b.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save baseline %s", b.Key)
}

func (s *SQLiteStore) GetBaseline(ctx context.Context, key string) (*model.Baseline, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, mean, variance, count, updated_at FROM baselines WHERE key = ?`,
		key,
	)

	var b model.Baseline
	err := row.Scan(&b.Key, &b.Mean, &b.Variance, &b.Count, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get baseline %s", key)
	}
	return &b, nil
}

func (s *SQLiteStore) ListBaselines(ctx context.Context) ([]model.Baseline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, mean, variance, count, updated_at FROM baselines ORDER BY key`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list baselines")
	}
	defer rows.Close()

	var baselines []model.Baseline
	for rows.Next() {
		var b model.Baseline
		if err := rows.Scan(&b.Key, &b.Mean, &b.Variance, &b.Count, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan baseline")
		}
		baselines = append(baselines, b)
	}
	return baselines, eris.Wrap(rows.Err(), "sqlite: list baselines iterate")
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap model.PlaybackSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken_at, payload) VALUES (?, ?, ?)`,
		snap.ID, snap.Timestamp.UTC(), string(payload),
	)
	return eris.Wrap(err, "sqlite: save snapshot")
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.PlaybackSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE id = ?`,
		id,
	)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
	}

	var snap model.PlaybackSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]model.PlaybackSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM snapshots ORDER BY taken_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.PlaybackSnapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		var snap model.PlaybackSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE taken_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete old snapshots")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
