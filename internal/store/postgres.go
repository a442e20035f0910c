package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/argusint/argus-cli/internal/model"
)

// Pool abstracts pgxpool.Pool so the store can be unit-tested with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path (baseline read/write happens every refresh cycle).
var preparedStatements = map[string]string{
	"save_baseline": `INSERT INTO baselines (key, mean, variance, count, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET mean = EXCLUDED.mean, variance = EXCLUDED.variance,
		count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`,
	"get_baseline":  `SELECT key, mean, variance, count, updated_at FROM baselines WHERE key = $1`,
	"save_snapshot": `INSERT INTO snapshots (id, taken_at, payload) VALUES ($1, $2, $3)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS baselines (
	key        TEXT PRIMARY KEY,
	mean       DOUBLE PRECISION NOT NULL,
	variance   DOUBLE PRECISION NOT NULL,
	count      INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id       TEXT PRIMARY KEY,
	taken_at TIMESTAMPTZ NOT NULL,
	payload  JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveBaseline(ctx context.Context, b model.Baseline) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO baselines (key, mean, variance, count, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE SET mean = EXCLUDED.mean, variance = EXCLUDED.variance,
		 count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`,
		b.Key, b.Mean, b.Variance, b.Count, b.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save baseline %s", b.Key)
}

func (s *PostgresStore) GetBaseline(ctx context.Context, key string) (*model.Baseline, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT key, mean, variance, count, updated_at FROM baselines WHERE key = $1`,
		key,
	)

	var b model.Baseline
	err := row.Scan(&b.Key, &b.Mean, &b.Variance, &b.Count, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get baseline %s", key)
	}
	return &b, nil
}

func (s *PostgresStore) ListBaselines(ctx context.Context) ([]model.Baseline, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, mean, variance, count, updated_at FROM baselines ORDER BY key`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list baselines")
	}
	defer rows.Close()

	var baselines []model.Baseline
	for rows.Next() {
		var b model.Baseline
		if err := rows.Scan(&b.Key, &b.Mean, &b.Variance, &b.Count, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan baseline")
		}
		baselines = append(baselines, b)
	}
	return baselines, eris.Wrap(rows.Err(), "postgres: list baselines iterate")
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap model.PlaybackSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, taken_at, payload) VALUES ($1, $2, $3)`,
		snap.ID, snap.Timestamp.UTC(), payload,
	)
	return eris.Wrap(err, "postgres: save snapshot")
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.PlaybackSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT payload FROM snapshots WHERE id = $1`,
		id,
	)

	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
	}

	var snap model.PlaybackSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, limit int) ([]model.PlaybackSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM snapshots ORDER BY taken_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []model.PlaybackSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		var snap model.PlaybackSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

func (s *PostgresStore) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM snapshots WHERE taken_at < $1`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete old snapshots")
	}
	return int(tag.RowsAffected()), nil
}

// Open constructs a store from driver/DSN configuration.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn)
	case "sqlite", "":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
