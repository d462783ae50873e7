// Package diag serves the liveness and store-diagnostics endpoints. The
// diagnostics handler exists to report failure, so it swallows every error
// and renders it as a status string instead of propagating it.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"linksdash/internal/httpx"
)

const (
	// maxCollections caps how many table names the diagnostics report lists.
	maxCollections = 10
	// maxErrLen caps how much of an internal error leaks into the report.
	maxErrLen = 50

	checkTimeout = 5 * time.Second
)

// Store is the slice of the connection pool the diagnostics need.
type Store interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TestResponse is the diagnostics report. Every field is a human-readable
// status string; the endpoint always answers 200.
type TestResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name,omitempty"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Handler provides the liveness and diagnostics endpoints.
type Handler struct {
	store        Store
	databaseName string
	urlSet       bool
	logger       *slog.Logger
}

// HandlerConfig holds configuration for the handler. Store may be nil when
// the database never came up; the report then says so.
type HandlerConfig struct {
	Store          Store
	DatabaseName   string
	DatabaseURLSet bool
	Logger         *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:        cfg.Store,
		databaseName: cfg.DatabaseName,
		urlSet:       cfg.DatabaseURLSet,
		logger:       logger,
	}
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Links Dashboard API",
	})
}

// Test handles GET /test. It never fails: every problem along the way is
// folded into the response body.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := TestResponse{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      "not set",
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if h.urlSet {
		resp.DatabaseURL = "set"
	}

	if h.store == nil {
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp.DatabaseName = h.databaseName

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "diagnostics ping failed", "error", err.Error())
		resp.Database = fmt.Sprintf("error: %s", truncate(err.Error(), maxErrLen))
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp.Database = "available"
	resp.ConnectionStatus = "connected"

	collections, err := h.listCollections(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "diagnostics table listing failed", "error", err.Error())
		resp.Database = fmt.Sprintf("connected but error: %s", truncate(err.Error(), maxErrLen))
		httpx.WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp.Database = "connected and working"
	resp.Collections = collections
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) listCollections(ctx context.Context) ([]string, error) {
	rows, err := h.store.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
		LIMIT $1`,
		maxCollections,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
