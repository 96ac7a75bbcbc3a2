package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-json-experiment/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/id"
)

const bookPrefix = "book:"

// Book Operations

// CreateBook persists a new book. The store assigns the ID and the creation
// timestamp and fills defaults (empty tag list, unread). Returns
// ErrInvalidInput if title or author is missing; nothing is persisted in
// that case.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return ErrInvalidInput.WithMessage("title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		return ErrInvalidInput.WithMessage("author is required")
	}

	if book.ID == "" {
		newID, err := id.Generate("book")
		if err != nil {
			return fmt.Errorf("assign book id: %w", err)
		}
		book.ID = newID
	}
	if book.Added.IsZero() {
		book.Added = time.Now().UTC()
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}

	key := buildKey(bookPrefix, book.ID)
	defer releaseKey(key)

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrBookExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check existing key: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookExists) {
			return ErrBookExists
		}
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("author", book.Author),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(bookPrefix, bookID)
	defer releaseKey(key)

	var book domain.Book
	err := s.get(key, &book)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook merges a partial update into an existing book. The
// read-modify-write happens inside a single transaction, so the record is
// replaced atomically; concurrent updates to the same ID are last-write-wins.
// Identity fields (id, added) are never touched.
func (s *Store) UpdateBook(ctx context.Context, bookID string, patch *domain.BookPatch) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(bookPrefix, bookID)
	defer releaseKey(key)

	var book domain.Book
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("get existing book: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
		if err != nil {
			return fmt.Errorf("unmarshal book: %w", err)
		}

		patch.Apply(&book)
		if book.Tags == nil {
			book.Tags = []string{}
		}

		data, err := json.Marshal(&book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}
	return &book, nil
}

// DeleteBook removes a book. Returns ErrBookNotFound for unknown IDs;
// deletion is irreversible.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(bookPrefix, bookID)
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("get key: %w", err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", bookID)
	}
	return nil
}

// ListBooks returns the full collection. Order follows the key space
// (effectively insertion-id order); callers sort as needed.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books := []*domain.Book{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("unmarshal book: %w", err)
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListBooksBySeries returns all books whose series name matches exactly.
// Series membership is just a matching string, so this is a collection scan.
func (s *Store) ListBooksBySeries(ctx context.Context, series string) ([]*domain.Book, error) {
	all, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	books := []*domain.Book{}
	for _, b := range all {
		if b.Series == series {
			books = append(books, b)
		}
	}
	return books, nil
}

// ListTags returns the set of distinct tag strings across all books,
// each exactly once, sorted for stable output.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, b := range books {
		for _, t := range b.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags, nil
}

// ListAuthors returns the distinct author names across all books, sorted.
func (s *Store) ListAuthors(ctx context.Context) ([]string, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	authors := []string{}
	for _, b := range books {
		if b.Author == "" {
			continue
		}
		if _, ok := seen[b.Author]; ok {
			continue
		}
		seen[b.Author] = struct{}{}
		authors = append(authors, b.Author)
	}
	slices.Sort(authors)
	return authors, nil
}

// ListSeries returns the distinct non-empty series names across all books, sorted.
func (s *Store) ListSeries(ctx context.Context) ([]string, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	series := []string{}
	for _, b := range books {
		if b.Series == "" {
			continue
		}
		if _, ok := seen[b.Series]; ok {
			continue
		}
		seen[b.Series] = struct{}{}
		series = append(series, b.Series)
	}
	slices.Sort(series)
	return series, nil
}
