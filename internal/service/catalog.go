// Package service provides the business logic layer for the Shelfmark catalog.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// Sort keys accepted by ListBooks.
const (
	SortByTitle  = "title"
	SortByAuthor = "author"
	SortByAdded  = "added"
	SortBySeries = "series"
	SortByRead   = "read"
)

// ListParams controls optional server-side filtering and ordering of the
// book collection.
type ListParams struct {
	Search string // case-insensitive substring over title, author, tags, series
	Sort   string // one of the SortBy* keys; empty means added
	Order  string // "asc" or "desc"; empty means descending (newest first)
}

// CatalogService orchestrates book catalog operations.
type CatalogService struct {
	store    *store.Store
	collator *collate.Collator
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(st *store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:    st,
		collator: collate.New(language.Und, collate.IgnoreCase),
		logger:   logger,
	}
}

// CreateBook persists a new book and returns the full record with the
// server-assigned id, creation timestamp, and defaults filled in.
func (s *CatalogService) CreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves a single book by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// ListBooks returns the collection, optionally filtered by a substring
// search and ordered by the requested sort key. Without params the list is
// ordered newest-first by date added.
func (s *CatalogService) ListBooks(ctx context.Context, params ListParams) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	if params.Search != "" {
		filtered := books[:0]
		for _, b := range books {
			if s.matches(b, params.Search) {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	if err := s.sortBooks(books, params.Sort, params.Order); err != nil {
		return nil, err
	}

	return books, nil
}

// UpdateBook merges a partial update into an existing book and returns the
// updated record.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, patch *domain.BookPatch) (*domain.Book, error) {
	book, err := s.store.UpdateBook(ctx, bookID, patch)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book; irreversible.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	return s.store.DeleteBook(ctx, bookID)
}

// ListTags returns the distinct tag strings across the collection.
func (s *CatalogService) ListTags(ctx context.Context) ([]string, error) {
	return s.store.ListTags(ctx)
}

// ListAuthors returns the distinct author names across the collection.
func (s *CatalogService) ListAuthors(ctx context.Context) ([]string, error) {
	return s.store.ListAuthors(ctx)
}

// ListSeries returns the distinct series names across the collection.
func (s *CatalogService) ListSeries(ctx context.Context) ([]string, error) {
	return s.store.ListSeries(ctx)
}

// ListBooksBySeries returns the books whose series name matches exactly,
// ordered by position within the series.
func (s *CatalogService) ListBooksBySeries(ctx context.Context, series string) ([]*domain.Book, error) {
	books, err := s.store.ListBooksBySeries(ctx, series)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		if a.NumSeries != b.NumSeries {
			if a.NumSeries < b.NumSeries {
				return -1
			}
			return 1
		}
		return s.collator.CompareString(a.Title, b.Title)
	})
	return books, nil
}

// matches reports whether the term (case-insensitive) is a substring of the
// book's title, author, any tag, or series name.
func (s *CatalogService) matches(b *domain.Book, term string) bool {
	needle := strings.ToLower(term)

	if strings.Contains(strings.ToLower(b.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Author), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Series), needle) {
		return true
	}
	for _, tag := range b.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortBooks orders the collection in place. String comparisons are
// case-insensitive (Unicode collation); dates compare by instant.
func (s *CatalogService) sortBooks(books []*domain.Book, sortKey, order string) error {
	if sortKey == "" {
		sortKey = SortByAdded
	}
	if order == "" {
		// The catalog's default listing is newest first.
		order = "desc"
	}

	var cmp func(a, b *domain.Book) int
	switch sortKey {
	case SortByTitle:
		cmp = func(a, b *domain.Book) int { return s.collator.CompareString(a.Title, b.Title) }
	case SortByAuthor:
		cmp = func(a, b *domain.Book) int { return s.collator.CompareString(a.Author, b.Author) }
	case SortByAdded:
		cmp = func(a, b *domain.Book) int { return a.Added.Compare(b.Added) }
	case SortBySeries:
		cmp = func(a, b *domain.Book) int {
			if c := s.collator.CompareString(a.Series, b.Series); c != 0 {
				return c
			}
			// Same series: order by position within it.
			if a.NumSeries < b.NumSeries {
				return -1
			}
			if a.NumSeries > b.NumSeries {
				return 1
			}
			return 0
		}
	case SortByRead:
		cmp = func(a, b *domain.Book) int {
			if a.IsRead == b.IsRead {
				return 0
			}
			if !a.IsRead {
				return -1
			}
			return 1
		}
	default:
		return domainerrors.Validationf("unknown sort key: %s", sortKey)
	}

	switch order {
	case "asc":
	case "desc":
		inner := cmp
		cmp = func(a, b *domain.Book) int { return -inner(a, b) }
	default:
		return domainerrors.Validationf("unknown sort order: %s (must be asc or desc)", order)
	}

	slices.SortStableFunc(books, cmp)

	if s.logger != nil {
		s.logger.Debug("sorted books", "sort", sortKey, "order", order, "count", len(books))
	}
	return nil
}

// String summarizes the params for logging.
func (p ListParams) String() string {
	return fmt.Sprintf("search=%q sort=%s order=%s", p.Search, p.Sort, p.Order)
}
