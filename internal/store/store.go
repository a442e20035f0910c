// Package store persists baselines and playback snapshots. Signal history
// and the dedupe set are deliberately in-memory only (detector-owned) and
// never pass through here.
package store

import (
	"context"
	"time"

	"github.com/argusint/argus-cli/internal/model"
)

// Store defines the persistence interface for the correlation pipeline.
// Reads return (nil, nil) when the row does not exist.
type Store interface {
	// Baselines
	SaveBaseline(ctx context.Context, b model.Baseline) error
	GetBaseline(ctx context.Context, key string) (*model.Baseline, error)
	ListBaselines(ctx context.Context) ([]model.Baseline, error)

	// Playback snapshots
	SaveSnapshot(ctx context.Context, snap model.PlaybackSnapshot) error
	GetSnapshot(ctx context.Context, id string) (*model.PlaybackSnapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]model.PlaybackSnapshot, error)
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
