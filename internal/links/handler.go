package links

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"linksdash/internal/errx"
	"linksdash/internal/httpx"
)

// maxErrMsgLen caps how much of an underlying storage error leaks into a
// server-error response.
const maxErrMsgLen = 120

// CreateLinkRequest represents the JSON request body for creating a link.
type CreateLinkRequest struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Labels      []string `json:"labels"`
	AddedBy     string   `json:"added_by"`
	Description *string  `json:"description"`
}

// UpdateLinkRequest represents the JSON body of a partial update. Absent
// fields decode as nil and are left untouched.
type UpdateLinkRequest struct {
	Title       *string   `json:"title"`
	URL         *string   `json:"url"`
	Labels      *[]string `json:"labels"`
	Description *string   `json:"description"`
}

// LinkResponse is the wire representation of a link.
type LinkResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Labels      []string `json:"labels"`
	AddedBy     string   `json:"added_by"`
	Description *string  `json:"description,omitempty"`
	Clicks      int64    `json:"clicks"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// DeleteResponse acknowledges a successful delete.
type DeleteResponse struct {
	OK bool `json:"ok"`
}

func toLinkResponse(l Link) LinkResponse {
	resp := LinkResponse{
		ID:          l.ID.String(),
		Title:       l.Title,
		URL:         l.URL,
		Labels:      l.Labels,
		AddedBy:     l.AddedBy,
		Description: l.Description,
		Clicks:      l.Clicks,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.UpdatedAt != nil {
		resp.UpdatedAt = l.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// Handler provides HTTP handlers for link operations.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[CreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.service.Create(ctx, CreateLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Labels:      req.Labels,
		AddedBy:     req.AddedBy,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"labels", len(link.Labels),
	)
	httpx.WriteJSON(w, http.StatusOK, toLinkResponse(link))
}

// ListLinks handles GET /links with optional label, search, sort, and limit
// query parameters. Limit and sort are validated here, before any store call.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	params := ListParams{
		Label:  r.URL.Query().Get("label"),
		Search: r.URL.Query().Get("search"),
		Sort:   SortPopular,
		Limit:  DefaultLimit,
	}

	if raw := r.URL.Query().Get("sort"); raw != "" {
		sort := Sort(raw)
		if sort != SortPopular && sort != SortNew {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input",
				"sort must be \"popular\" or \"new\"", nil)
			return
		}
		params.Sort = sort
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < MinLimit || limit > MaxLimit {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input",
				"limit must be an integer between 1 and 500", nil)
			return
		}
		params.Limit = limit
	}

	found, err := h.service.List(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	resp := make([]LinkResponse, 0, len(found))
	for _, link := range found {
		resp = append(resp, toLinkResponse(link))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// IncrementClick handles POST /links/{id}/click.
func (h *Handler) IncrementClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	link, err := h.service.IncrementClick(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "click recorded",
		"link_id", link.ID.String(),
		"clicks", link.Clicks,
	)
	httpx.WriteJSON(w, http.StatusOK, toLinkResponse(link))
}

// UpdateLink handles PUT /links/{id}.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[UpdateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.service.Update(ctx, chi.URLParam(r, "id"), UpdateLinkInput{
		Title:       req.Title,
		URL:         req.URL,
		Labels:      req.Labels,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link updated", "link_id", link.ID.String())
	httpx.WriteJSON(w, http.StatusOK, toLinkResponse(link))
}

// DeleteLink handles DELETE /links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(ctx, id); err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "link deleted", "link_id", id)
	httpx.WriteJSON(w, http.StatusOK, DeleteResponse{OK: true})
}

// ListLabels handles GET /labels.
func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	counts, err := h.service.AggregateLabels(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, counts)
}

// writeServiceError translates errx kinds into HTTP responses. Client errors
// carry the full message; server errors carry the underlying error truncated.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := errx.KindOf(err)
	status := httpx.ErrorKindToStatus(kind)
	code := httpx.ErrorKindToCode(kind)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind.String(),
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid link request", logAttrs...)
		httpx.WriteError(w, status, code, err.Error(), nil)
	case errx.NotFound:
		logger.WarnContext(ctx, "link not found", logAttrs...)
		httpx.WriteError(w, status, code, "link not found", nil)
	default:
		logger.ErrorContext(ctx, "link operation failed", logAttrs...)
		httpx.WriteError(w, status, code, truncate(err.Error(), maxErrMsgLen), nil)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
