package httputil

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(discardLogger())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestValidationError(t *testing.T) {
	type req struct {
		Question string `validate:"required"`
		TopK     int    `validate:"gte=1,lte=50"`
	}
	err := Validator.Struct(req{TopK: 99})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(discardLogger(), rec, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request","fields":{"question":"required","topk":"lte=50"}}`, rec.Body.String())
}

func TestValidationErrorFallsBackToFail(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(discardLogger(), rec, errors.New("boom"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request")
}

func TestRecovererHandlesPanic(t *testing.T) {
	r := NewRouter(discardLogger())
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
