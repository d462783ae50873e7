package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"linksdash/internal/errx"
)

type mockService struct {
	createFunc func(ctx context.Context, in CreateUserInput) (User, error)
	listFunc   func(ctx context.Context, limit int) ([]User, error)

	calls int
}

func (m *mockService) Create(ctx context.Context, in CreateUserInput) (User, error) {
	m.calls++
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return User{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		AvatarURL: in.AvatarURL,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockService) List(ctx context.Context, limit int) ([]User, error) {
	m.calls++
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return []User{}, nil
}

func newTestHandler(svc Service) *Handler {
	return NewHandler(HandlerConfig{
		Service: svc,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestHandler_CreateUser(t *testing.T) {
	t.Run("returns 200 with the stored entity", func(t *testing.T) {
		h := newTestHandler(&mockService{})

		req := httptest.NewRequest("POST", "/users",
			strings.NewReader(`{"name":"Sam","email":"sam@example.com"}`))
		rec := httptest.NewRecorder()
		h.CreateUser(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp UserResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if resp.ID == "" {
			t.Error("response id should be set")
		}
		if resp.Email == nil || *resp.Email != "sam@example.com" {
			t.Errorf("email = %v, want sam@example.com", resp.Email)
		}
		if resp.CreatedAt != "2025-06-01T12:00:00Z" {
			t.Errorf("created_at = %q, want RFC 3339", resp.CreatedAt)
		}
	})

	t.Run("omits absent optional fields", func(t *testing.T) {
		h := newTestHandler(&mockService{})

		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"name":"Sam"}`))
		rec := httptest.NewRecorder()
		h.CreateUser(rec, req)

		var raw map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		if _, ok := raw["email"]; ok {
			t.Error("email should be omitted when absent")
		}
		if _, ok := raw["avatar_url"]; ok {
			t.Error("avatar_url should be omitted when absent")
		}
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		svc := &mockService{}
		h := newTestHandler(svc)

		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()
		h.CreateUser(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if svc.calls != 0 {
			t.Error("service should not be called for malformed JSON")
		}
	})

	t.Run("returns 500 on storage failure", func(t *testing.T) {
		svc := &mockService{
			createFunc: func(ctx context.Context, in CreateUserInput) (User, error) {
				return User{}, errx.E("users.repo.Create", errx.Unavailable, errors.New("down"))
			},
		}
		h := newTestHandler(svc)

		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"name":"Sam"}`))
		rec := httptest.NewRecorder()
		h.CreateUser(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}

func TestHandler_ListUsers(t *testing.T) {
	t.Run("passes limit to the service", func(t *testing.T) {
		var gotLimit int
		svc := &mockService{
			listFunc: func(ctx context.Context, limit int) ([]User, error) {
				gotLimit = limit
				return []User{}, nil
			},
		}
		h := newTestHandler(svc)

		req := httptest.NewRequest("GET", "/users?limit=7", nil)
		rec := httptest.NewRecorder()
		h.ListUsers(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotLimit != 7 {
			t.Errorf("limit = %d, want 7", gotLimit)
		}
	})

	t.Run("rejects out-of-range limit before the service", func(t *testing.T) {
		svc := &mockService{}
		h := newTestHandler(svc)

		req := httptest.NewRequest("GET", "/users?limit=501", nil)
		rec := httptest.NewRecorder()
		h.ListUsers(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if svc.calls != 0 {
			t.Error("service should not be called for invalid limit")
		}
	})

	t.Run("returns empty array rather than null", func(t *testing.T) {
		h := newTestHandler(&mockService{})

		req := httptest.NewRequest("GET", "/users", nil)
		rec := httptest.NewRecorder()
		h.ListUsers(rec, req)

		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})
}
