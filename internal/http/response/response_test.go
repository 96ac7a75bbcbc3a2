package response

import (
	"fmt"
	"github.com/go-json-experiment/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSuccess_RawPayload(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]string{"id": "book-123"}, testLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "book-123", result["id"])
}

func TestSuccess_Array(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, []string{"sci-fi", "classic"}, testLogger())

	// Collections are written as bare JSON arrays, no envelope.
	var result []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"sci-fi", "classic"}, result)
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"id": "book-new"}, testLogger())

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError_Shape(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusBadRequest, "title is required", testLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "title is required", body.Error)
}

func TestHandleError_StoreError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, store.ErrBookNotFound, testLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "book not found", body.Error)
}

func TestHandleError_WrappedStoreError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, fmt.Errorf("service: %w", store.ErrInvalidInput.WithMessage("author is required")), testLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.Validation("bad payload"), testLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, assert.AnError, testLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}

func TestNilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]string{"ok": "yes"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
