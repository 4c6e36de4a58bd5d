package httputil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Text string `json:"text"`
}

type preparedRequest struct {
	Text      string `json:"text"`
	sanitized bool
	steps     []string
}

func (r *preparedRequest) Sanitize() {
	r.sanitized = true
	r.steps = append(r.steps, "sanitize")
}

func (r *preparedRequest) Normalize() {
	r.steps = append(r.steps, "normalize")
}

func (r *preparedRequest) Validate() error {
	r.steps = append(r.steps, "validate")
	if r.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"text":"P<UTO"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[decodeTarget](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "P<UTO", result.Text)
	})

	t.Run("invalid JSON writes bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[decodeTarget](w, req, logger, ctx, "req-2")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("runs preparation steps in order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"text":"abc"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-3")

		require.True(t, ok)
		assert.True(t, result.sanitized)
		assert.Equal(t, []string{"sanitize", "normalize", "validate"}, result.steps)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"text":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[preparedRequest](w, req, logger, ctx, "req-4")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
	})
}
