package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/argusint/argus-cli/internal/baseline"
	"github.com/argusint/argus-cli/internal/cluster"
	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/correlate"
	"github.com/argusint/argus-cli/internal/feeds"
	"github.com/argusint/argus-cli/internal/fetcher"
	"github.com/argusint/argus-cli/internal/hotspot"
	"github.com/argusint/argus-cli/internal/markets"
	"github.com/argusint/argus-cli/internal/model"
	"github.com/argusint/argus-cli/internal/pipeline"
	"github.com/argusint/argus-cli/internal/store"
)

// appEnv bundles the wired dependencies shared by the long-running
// commands.
type appEnv struct {
	Store    store.Store
	Engine   *pipeline.Engine
	Tables   *config.Tables
	Hotspots []model.Hotspot
}

// newEnv opens the store, loads the keyword tables and hotspot
// definitions, and wires the full pipeline engine.
func newEnv(ctx context.Context) (*appEnv, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "cmd: migrate store")
	}

	tables, err := config.LoadTables(cfg.Tables.Path)
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "cmd: load tables")
	}
	hotspots, err := config.LoadHotspots(cfg.Hotspots.Path)
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "cmd: load hotspots")
	}

	f := fetcher.New(fetcher.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	engine := pipeline.New(
		cfg,
		st,
		feeds.NewAdapter(f, cfg.Feeds, tables, cfg.Fetch.MaxConcurrency),
		markets.NewClient(f, cfg.Markets),
		baseline.NewEngine(cfg.Baseline, st),
		cluster.NewEngine(cfg.Cluster, tables, cfg.SourceTiers()),
		correlate.NewDetector(cfg.Detector, correlate.TopicsFromTables(tables, cfg.SourceCategories())),
		hotspot.NewScorer(tables),
		hotspots,
	)

	return &appEnv{Store: st, Engine: engine, Tables: tables, Hotspots: hotspots}, nil
}

func (e *appEnv) Close() {
	_ = e.Store.Close()
}

// openStore opens just the store for one-shot inspection commands.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "cmd: migrate store")
	}
	return st, nil
}
