package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/classify"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/monitoring"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/resolve"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolution HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		router := newRouter(e)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return runServer(ctx, srv)
	},
}

// shutdownGrace bounds how long in-flight requests get to drain.
const shutdownGrace = 10 * time.Second

// runServer serves until ctx is cancelled, then drains in-flight
// requests on a fresh timeout context. The signal context is already
// cancelled by then, so it cannot be the shutdown deadline.
func runServer(ctx context.Context, srv *http.Server) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	if err := <-done; err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolveRequest is the POST /api/resolve body. Callers either send a
// raw description to extract from, or pre-extracted candidates.
type resolveRequest struct {
	OrgID       string                     `json:"org_id,omitempty"`
	Description string                     `json:"description,omitempty"`
	Candidates  []model.CandidateReference `json:"candidates,omitempty"`
}

type resolveResponse struct {
	Suggestions []classify.Suggestion `json:"suggestions"`
}

func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/resolve", e.handleResolve)
	r.Get("/api/stats", e.handleStats)
	r.Get("/api/catalog", e.handleCatalogList)
	r.Post("/api/catalog", e.handleCatalogCreate)
	r.Delete("/api/catalog/{type}/{id}", e.handleCatalogDelete)

	return r
}

func (e *env) handleResolve(w http.ResponseWriter, req *http.Request) {
	var payload resolveRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Description == "" && len(payload.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "description or candidates is required")
		return
	}

	ctx := req.Context()
	orgID := payload.OrgID
	if orgID == "" {
		orgID = e.cfg.Org.ID
	}

	entries, err := e.Store.LoadEntries(ctx, orgID)
	if err != nil {
		zap.L().Error("catalog load failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog load failed")
		return
	}
	snap := resolve.NewSnapshot(entries)

	candidates := payload.Candidates
	if len(candidates) == 0 {
		ex, err := e.extractor(entries)
		if err != nil {
			zap.L().Error("extractor init failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "extractor init failed")
			return
		}
		candidates, err = ex.Extract(ctx, payload.Description)
		if err != nil {
			zap.L().Error("extraction failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "extraction failed")
			return
		}
	}

	verdicts, err := e.Resolver.Batch(ctx, candidates, snap, e.cfg.Resolver.Concurrency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := classify.SuggestAll(verdicts, e.Policies)
	if err != nil {
		zap.L().Error("classification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "classification failed")
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{Suggestions: suggestions})
}

func (e *env) handleStats(w http.ResponseWriter, req *http.Request) {
	orgID := req.URL.Query().Get("org_id")
	if orgID == "" {
		orgID = e.cfg.Org.ID
	}

	stats, err := monitoring.NewCollector(e.Store).Collect(req.Context(), orgID)
	if err != nil {
		zap.L().Error("stats collection failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats collection failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (e *env) handleCatalogList(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	orgID := req.URL.Query().Get("org_id")
	if orgID == "" {
		orgID = e.cfg.Org.ID
	}

	var entries []model.CatalogEntry
	var err error
	if raw := req.URL.Query().Get("type"); raw != "" {
		t, perr := model.ParseEntityType(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		entries, err = e.Store.ListEntries(ctx, orgID, t)
	} else {
		entries, err = e.Store.LoadEntries(ctx, orgID)
	}
	if err != nil {
		zap.L().Error("catalog list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog list failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (e *env) handleCatalogCreate(w http.ResponseWriter, req *http.Request) {
	var entry model.CatalogEntry
	if err := json.NewDecoder(req.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if entry.OrgID == "" {
		entry.OrgID = e.cfg.Org.ID
	}
	if entry.Label == "" || !entry.EntityType.Valid() {
		writeError(w, http.StatusBadRequest, "label and a valid entity_type are required")
		return
	}

	if err := e.Store.CreateEntry(req.Context(), &entry); err != nil {
		zap.L().Error("catalog create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "catalog create failed")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (e *env) handleCatalogDelete(w http.ResponseWriter, req *http.Request) {
	entityType, err := model.ParseEntityType(chi.URLParam(req, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(req, "id")

	orgID := req.URL.Query().Get("org_id")
	if orgID == "" {
		orgID = e.cfg.Org.ID
	}

	if err := e.Store.DeleteEntry(req.Context(), orgID, entityType, id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		zap.L().Info("http request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
