// Package catalog provides a Go client for the Shelfmark catalog API,
// plus a local collection cache with optimistic updates, filtering, and
// sorting for building frontends on top of it.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"github.com/go-json-experiment/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Book is the wire representation of a catalog record.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Series      string    `json:"series,omitempty"`
	NumSeries   float64   `json:"num_series,omitempty"`
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	IsRead      bool      `json:"is_read"`
	Added       time.Time `json:"added"`
}

// NewBook is the payload for adding a book. The server assigns the id and
// the added timestamp.
type NewBook struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags,omitempty"`
	Series      string   `json:"series,omitempty"`
	NumSeries   float64  `json:"num_series,omitempty"`
	Description string   `json:"description,omitempty"`
	Filename    string   `json:"filename,omitempty"`
	IsRead      bool     `json:"is_read,omitempty"`
}

// BookUpdate is a partial update. Only non-nil fields are sent, and only
// those change on the server.
type BookUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Author      *string   `json:"author,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Series      *string   `json:"series,omitempty"`
	NumSeries   *float64  `json:"num_series,omitempty"`
	Description *string   `json:"description,omitempty"`
	Filename    *string   `json:"filename,omitempty"`
	IsRead      *bool     `json:"is_read,omitempty"`
}

// Ptr returns a pointer to v; convenience for building a BookUpdate.
func Ptr[T any](v T) *T { return &v }

// ListOptions carries the optional query params for ListBooks.
type ListOptions struct {
	Search string
	Sort   string
	Order  string
}

// APIError is returned when the server responds with a non-2xx status.
// Message carries the server's error text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the error is a 404 from the server.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to a Shelfmark server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL (e.g.
// "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client using a caller-supplied http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListBooks fetches the collection, honoring the given options.
func (c *Client) ListBooks(ctx context.Context, opts ListOptions) ([]Book, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}

	path := "/api/books"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var books []Book
	if err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook fetches a single book by id.
func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	var book Book
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook adds a book and returns the full record with the
// server-assigned id.
func (c *Client) CreateBook(ctx context.Context, nb NewBook) (*Book, error) {
	var book Book
	if err := c.do(ctx, http.MethodPost, "/api/books", nb, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook applies a partial update and returns the updated record.
func (c *Client) UpdateBook(ctx context.Context, id string, update BookUpdate) (*Book, error) {
	var book Book
	if err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), update, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book permanently.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil)
}

// ListTags fetches the distinct tags across the collection.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ListAuthors fetches the distinct author names.
func (c *Client) ListAuthors(ctx context.Context) ([]string, error) {
	var authors []string
	if err := c.do(ctx, http.MethodGet, "/api/authors", nil, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// ListSeries fetches the distinct series names.
func (c *Client) ListSeries(ctx context.Context) ([]string, error) {
	var series []string
	if err := c.do(ctx, http.MethodGet, "/api/series", nil, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// do performs one request. A nil body sends no payload; a nil out discards
// the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.MarshalWrite(buf, body); err != nil {
			return fmt.Errorf("catalog: encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("catalog: decode response: %w", err)
	}
	return nil
}

// apiError extracts the server's error message from an error response.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.UnmarshalRead(resp.Body, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
