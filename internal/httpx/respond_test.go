package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("writes status and content type", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, 200, map[string]string{"message": "ok"})

		if rec.Code != 200 {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, 200, map[string]int{"count": 3})

		var body map[string]int
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body["count"] != 3 {
			t.Errorf("count = %d, want 3", body["count"])
		}
	})

	t.Run("encodes slices", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteJSON(rec, 200, []string{"a", "b"})

		var body []string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if len(body) != 2 {
			t.Errorf("len = %d, want 2", len(body))
		}
	})
}

func TestWriteError(t *testing.T) {
	t.Run("writes error envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteError(rec, 400, "invalid_input", "limit out of range", nil)

		if rec.Code != 400 {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if body.Error != "invalid_input" {
			t.Errorf("error = %q, want invalid_input", body.Error)
		}
		if body.Message != "limit out of range" {
			t.Errorf("message = %q, want %q", body.Message, "limit out of range")
		}
	})

	t.Run("omits empty message and details", func(t *testing.T) {
		rec := httptest.NewRecorder()

		WriteError(rec, 404, "not_found", "", nil)

		var raw map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
			t.Fatalf("response is not valid JSON: %v", err)
		}
		if _, ok := raw["message"]; ok {
			t.Error("message should be omitted when empty")
		}
		if _, ok := raw["details"]; ok {
			t.Error("details should be omitted when nil")
		}
	})
}
