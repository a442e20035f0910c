package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/argusint/argus-cli/internal/hotspot"
	"github.com/argusint/argus-cli/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline with the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Pipeline loop runs alongside the server.
		go func() {
			if runErr := env.Engine.Run(ctx); runErr != nil && ctx.Err() == nil {
				zap.L().Error("serve: pipeline loop exited", zap.Error(runErr))
			}
		}()

		collector := monitoring.NewCollector(env.Store, env.Engine)

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, env.Engine.State())
			})
			r.Get("/events", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, env.Engine.State().Events)
			})
			r.Get("/deviations", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, env.Engine.State().Deviations)
			})
			r.Get("/markets", func(w http.ResponseWriter, _ *http.Request) {
				state := env.Engine.State()
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"quotes":      state.Markets,
					"predictions": state.Predictions,
				})
			})
			r.Get("/signals", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, env.Engine.State().Signals)
			})
			r.Get("/signals/history", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, env.Engine.SignalHistory())
			})
			r.Get("/hotspots", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, hotspot.GeoJSON(env.Engine.State().Hotspots))
			})
			r.Get("/hotspots/{id}/news", func(w http.ResponseWriter, req *http.Request) {
				items, ok := env.Engine.HotspotNews(chi.URLParam(req, "id"))
				if !ok {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown hotspot"})
					return
				}
				writeJSON(w, http.StatusOK, items)
			})
			r.Get("/snapshots", func(w http.ResponseWriter, req *http.Request) {
				limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
				snaps, err := env.Store.ListSnapshots(req.Context(), limit)
				if err != nil {
					zap.L().Error("serve: list snapshots", zap.Error(err))
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list snapshots failed"})
					return
				}
				writeJSON(w, http.StatusOK, snaps)
			})
			r.Get("/snapshots/{id}", func(w http.ResponseWriter, req *http.Request) {
				snap, err := env.Store.GetSnapshot(req.Context(), chi.URLParam(req, "id"))
				if err != nil {
					zap.L().Error("serve: get snapshot", zap.Error(err))
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get snapshot failed"})
					return
				}
				if snap == nil {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "snapshot not found"})
					return
				}
				writeJSON(w, http.StatusOK, snap)
			})
			r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
				metrics, err := collector.Collect(req.Context())
				if err != nil {
					zap.L().Error("serve: collect status", zap.Error(err))
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "collect failed"})
					return
				}
				writeJSON(w, http.StatusOK, metrics)
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("serve: shutting down")
			shutdownCtx, cancel := newShutdownContext()
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("serve: starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
