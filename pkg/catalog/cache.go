package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// State describes what the cache is currently doing.
type State int

const (
	// StateLoading means the initial fetch has not completed yet.
	StateLoading State = iota
	// StateReady means the cached collection reflects the last known
	// server state (plus any in-flight optimistic changes).
	StateReady
	// StateMutating means a create, update, or delete is in flight.
	StateMutating
	// StateError means the initial load failed and no collection has been
	// fetched yet. Once a load has succeeded, later failures keep the
	// cache in StateReady with the last-known-good list; the failure is
	// reported through Err instead.
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cache keeps a local copy of the collection and applies mutations
// optimistically: the local copy changes immediately, and rolls back to the
// pre-mutation snapshot if the server rejects the change. The rejection is
// kept in Err until dismissed.
type Cache struct {
	mu     sync.RWMutex
	client *Client
	books  []Book
	state  State
	err    error
	loaded bool // at least one Refresh has succeeded

	pendingSeq int // counter for temporary ids of optimistic creates
}

// NewCache creates a cache over the given client. The cache starts in
// StateLoading; call Refresh to populate it.
func NewCache(client *Client) *Cache {
	return &Cache{
		client: client,
		state:  StateLoading,
	}
}

// Refresh replaces the cached collection with the server's current state.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	books, err := c.client.ListBooks(ctx, ListOptions{})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// Before the first successful load there is nothing to fall back
		// to; afterwards the last-known-good list stays usable.
		if c.loaded {
			c.state = StateReady
		} else {
			c.state = StateError
		}
		c.err = err
		return err
	}

	c.books = books
	c.state = StateReady
	c.loaded = true
	c.err = nil
	return nil
}

// Books returns a snapshot of the cached collection.
func (c *Cache) Books() []Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.books)
}

// State returns the cache's current state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the last mutation or refresh error, if any. It stays set
// until DismissError is called or a later operation succeeds.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// DismissError clears the remembered error.
func (c *Cache) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

// Create optimistically adds the book to the local collection, then asks
// the server to persist it. On success the placeholder is replaced by the
// server record (with its assigned id); on failure the collection rolls
// back and the error is remembered.
func (c *Cache) Create(ctx context.Context, nb NewBook) (*Book, error) {
	c.mu.Lock()
	snapshot := slices.Clone(c.books)
	c.pendingSeq++
	tempID := fmt.Sprintf("pending-%d", c.pendingSeq)

	placeholder := Book{
		ID:          tempID,
		Title:       nb.Title,
		Author:      nb.Author,
		Tags:        nb.Tags,
		Series:      nb.Series,
		NumSeries:   nb.NumSeries,
		Description: nb.Description,
		Filename:    nb.Filename,
		IsRead:      nb.IsRead,
	}
	// New records show up at the top, matching the server's default order.
	c.books = append([]Book{placeholder}, c.books...)
	c.state = StateMutating
	c.mu.Unlock()

	created, err := c.client.CreateBook(ctx, nb)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady

	if err != nil {
		c.books = snapshot
		c.err = err
		return nil, err
	}

	for i := range c.books {
		if c.books[i].ID == tempID {
			c.books[i] = *created
			break
		}
	}
	c.err = nil
	return created, nil
}

// Update optimistically applies the change locally, then persists it. On
// failure the collection rolls back and the error is remembered.
func (c *Cache) Update(ctx context.Context, id string, update BookUpdate) (*Book, error) {
	c.mu.Lock()
	snapshot := slices.Clone(c.books)
	for i := range c.books {
		if c.books[i].ID == id {
			applyUpdate(&c.books[i], update)
			break
		}
	}
	c.state = StateMutating
	c.mu.Unlock()

	updated, err := c.client.UpdateBook(ctx, id, update)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady

	if err != nil {
		c.books = snapshot
		c.err = err
		return nil, err
	}

	for i := range c.books {
		if c.books[i].ID == id {
			c.books[i] = *updated
			break
		}
	}
	c.err = nil
	return updated, nil
}

// Delete optimistically removes the book locally, then persists the
// deletion. On failure the collection rolls back and the error is
// remembered.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	snapshot := slices.Clone(c.books)
	c.books = slices.DeleteFunc(c.books, func(b Book) bool { return b.ID == id })
	c.state = StateMutating
	c.mu.Unlock()

	err := c.client.DeleteBook(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady

	if err != nil {
		c.books = snapshot
		c.err = err
		return err
	}

	c.err = nil
	return nil
}

// applyUpdate mirrors the server's partial-update semantics on a local copy.
func applyUpdate(b *Book, u BookUpdate) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Tags != nil {
		b.Tags = *u.Tags
	}
	if u.Series != nil {
		b.Series = *u.Series
	}
	if u.NumSeries != nil {
		b.NumSeries = *u.NumSeries
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Filename != nil {
		b.Filename = *u.Filename
	}
	if u.IsRead != nil {
		b.IsRead = *u.IsRead
	}
}
