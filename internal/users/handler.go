package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"linksdash/internal/errx"
	"linksdash/internal/httpx"
)

const maxErrMsgLen = 120

// CreateUserRequest represents the JSON request body for creating a user.
type CreateUserRequest struct {
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// UserResponse is the wire representation of a user.
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// Handler provides HTTP handlers for user operations.
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

// CreateUser handles POST /users. Creating with an email that already exists
// returns the existing record with a 200, not an error.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[CreateUserRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	user, err := h.service.Create(ctx, CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	logger.InfoContext(ctx, "user created or matched", "user_id", user.ID.String())
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// ListUsers handles GET /users with an optional limit query parameter.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < MinLimit || parsed > MaxLimit {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input",
				"limit must be an integer between 1 and 500", nil)
			return
		}
		limit = parsed
	}

	found, err := h.service.List(ctx, limit)
	if err != nil {
		h.writeServiceError(ctx, w, logger, err)
		return
	}

	resp := make([]UserResponse, 0, len(found))
	for _, user := range found {
		resp = append(resp, toUserResponse(user))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

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
		logger.WarnContext(ctx, "invalid user request", logAttrs...)
		httpx.WriteError(w, status, code, err.Error(), nil)
	default:
		logger.ErrorContext(ctx, "user operation failed", logAttrs...)
		httpx.WriteError(w, status, code, truncate(err.Error(), maxErrMsgLen), nil)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
