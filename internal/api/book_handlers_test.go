package api

import (
	"bytes"
	"github.com/go-json-experiment/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/store"
	"github.com/shelfmark/shelfmark-server/internal/validation"
)

// setupTestServer creates a server backed by a throwaway store.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	catalog := service.NewCatalogService(st, logger)
	return NewServer(catalog, validation.New(), nil, logger)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBook(t *testing.T, body *bytes.Buffer) domain.Book {
	t.Helper()
	var book domain.Book
	require.NoError(t, json.Unmarshal(body.Bytes(), &book))
	return book
}

func decodeBooks(t *testing.T, body *bytes.Buffer) []domain.Book {
	t.Helper()
	var books []domain.Book
	require.NoError(t, json.Unmarshal(body.Bytes(), &books))
	return books
}

func TestCreateBook(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","tags":["sci-fi"]}`)

	require.Equal(t, http.StatusCreated, w.Code)

	book := decodeBook(t, w.Body)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, []string{"sci-fi"}, book.Tags)
	assert.False(t, book.IsRead)
	assert.False(t, book.Added.IsZero())
}

func TestCreateBook_Validation(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"author":"Frank Herbert"}`},
		{name: "missing author", body: `{"title":"Dune"}`},
		{name: "blank title", body: `{"title":"","author":"Frank Herbert"}`},
		{name: "malformed json", body: `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/api/books", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}

	// Nothing was persisted by any of the rejected requests.
	w := doJSON(t, srv, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBooks(t, w.Body))
}

func TestGetBook_NotFound(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/books/book-missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBooks_Empty(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, w.Code)

	// Empty collection serializes as [], not null.
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestListBooks_SearchAndSort(t *testing.T) {
	srv := setupTestServer(t)

	for _, body := range []string{
		`{"title":"Dune","author":"Frank Herbert","tags":["sci-fi","classic"]}`,
		`{"title":"Foundation","author":"Isaac Asimov","tags":["sci-fi"]}`,
		`{"title":"Emma","author":"Jane Austen","tags":["classic"]}`,
	} {
		w := doJSON(t, srv, http.MethodPost, "/api/books", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, srv, http.MethodGet, "/api/books?search=asimov", "")
	require.Equal(t, http.StatusOK, w.Code)
	books := decodeBooks(t, w.Body)
	require.Len(t, books, 1)
	assert.Equal(t, "Foundation", books[0].Title)

	w = doJSON(t, srv, http.MethodGet, "/api/books?sort=title&order=asc", "")
	require.Equal(t, http.StatusOK, w.Code)
	books = decodeBooks(t, w.Body)
	require.Len(t, books, 3)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Emma", books[1].Title)
	assert.Equal(t, "Foundation", books[2].Title)

	w = doJSON(t, srv, http.MethodGet, "/api/books?sort=publisher", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateBook_Partial(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","tags":["sci-fi"],"description":"Spice."}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBook(t, w.Body)

	w = doJSON(t, srv, http.MethodPut, "/api/books/"+created.ID, `{"is_read":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeBook(t, w.Body)
	assert.True(t, updated.IsRead)
	// Untouched fields survive the partial update.
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "Spice.", updated.Description)
	assert.Equal(t, []string{"sci-fi"}, updated.Tags)
	assert.Equal(t, created.Added.UTC(), updated.Added.UTC())
}

func TestUpdateBook_Invalid(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBook(t, w.Body)

	w = doJSON(t, srv, http.MethodPut, "/api/books/"+created.ID, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/api/books/book-missing", `{"is_read":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBook(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/books", `{"title":"Dune","author":"Frank Herbert"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBook(t, w.Body)

	w = doJSON(t, srv, http.MethodDelete, "/api/books/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/books/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Second delete of the same id is not idempotent success.
	w = doJSON(t, srv, http.MethodDelete, "/api/books/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestBookLifecycle walks a record through its whole life: create, list,
// mark read, delete, and confirm it is gone.
func TestBookLifecycle(t *testing.T) {
	srv := setupTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","tags":["sci-fi"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBook(t, w.Body)
	require.NotEmpty(t, created.ID)

	w = doJSON(t, srv, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	books := decodeBooks(t, w.Body)
	require.Len(t, books, 1)
	assert.Equal(t, created.ID, books[0].ID)

	w = doJSON(t, srv, http.MethodPut, "/api/books/"+created.ID, `{"is_read":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBook(t, w.Body).IsRead)

	w = doJSON(t, srv, http.MethodDelete, "/api/books/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/books/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBooks(t, w.Body))
}
