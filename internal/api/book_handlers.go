package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/http/response"
	"github.com/shelfmark/shelfmark-server/internal/service"
)

// BookCreateRequest is the payload for adding a book to the catalog.
// The server assigns the id and the added timestamp.
type BookCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Tags        []string `json:"tags"`
	Series      string   `json:"series"`
	NumSeries   float64  `json:"num_series" validate:"gte=0"`
	Description string   `json:"description"`
	Filename    string   `json:"filename"`
	IsRead      bool     `json:"is_read"`
}

// handleListBooks returns the collection, honoring the optional search,
// sort, and order query params.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	params := service.ListParams{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
		Order:  r.URL.Query().Get("order"),
	}

	books, err := s.catalog.ListBooks(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleCreateBook adds a new book and returns the full record, including
// the server-assigned id.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req BookCreateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book := &domain.Book{
		Title:       req.Title,
		Author:      req.Author,
		Tags:        req.Tags,
		Series:      req.Series,
		NumSeries:   req.NumSeries,
		Description: req.Description,
		Filename:    req.Filename,
		IsRead:      req.IsRead,
	}

	created, err := s.catalog.CreateBook(r.Context(), book)
	if err != nil {
		s.logger.Error("Failed to create book", "error", err, "title", req.Title)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, created, s.logger)
}

// handleGetBook returns a single book by id.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	book, err := s.catalog.GetBook(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleUpdateBook applies a partial update to a book. Only fields present
// in the request body change; the updated record is returned.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	var patch domain.BookPatch
	if err := json.UnmarshalRead(r.Body, &patch); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	// A supplied-but-blank title or author would corrupt the record.
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		response.BadRequest(w, "title cannot be empty", s.logger)
		return
	}
	if patch.Author != nil && strings.TrimSpace(*patch.Author) == "" {
		response.BadRequest(w, "author cannot be empty", s.logger)
		return
	}

	updated, err := s.catalog.UpdateBook(r.Context(), bookID, &patch)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, updated, s.logger)
}

// handleDeleteBook removes a book permanently.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")

	if err := s.catalog.DeleteBook(r.Context(), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
