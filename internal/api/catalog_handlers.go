package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-server/internal/http/response"
)

// handleListTags returns the distinct tags across the collection, sorted.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.catalog.ListTags(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, tags, s.logger)
}

// handleListAuthors returns the distinct author names, sorted.
func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.catalog.ListAuthors(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, authors, s.logger)
}

// handleListSeries returns the distinct series names, sorted.
func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.catalog.ListSeries(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, series, s.logger)
}

// handleListSeriesBooks returns the books in one series, ordered by their
// position within it.
func (s *Server) handleListSeriesBooks(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	books, err := s.catalog.ListBooksBySeries(r.Context(), name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}
