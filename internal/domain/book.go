// Package domain contains the core business entities for the Shelfmark catalog.
package domain

import "time"

// Book represents a single catalog entry for one physical or digital book.
// Tags and Series are denormalized string values, not references — a series
// is just a matching string across records, discovered by filtering.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Series      string    `json:"series,omitempty"`
	NumSeries   float64   `json:"num_series,omitempty"` // position within series; float for "1.5" style entries
	Description string    `json:"description,omitempty"`
	Filename    string    `json:"filename,omitempty"` // reference to an external file, unused by catalog logic
	IsRead      bool      `json:"is_read"`
	Added       time.Time `json:"added"`
}

// HasTag reports whether the book carries the given tag (exact match).
func (b *Book) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// BookPatch describes a partial update to a book. Only non-nil fields are
// applied. Note: omitempty is intentionally not used here - we need to
// distinguish between "field not provided" (nil pointer) and "field set to
// empty" (pointer to zero value). ID and Added are identity fields and are
// never patched.
type BookPatch struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	Tags        *[]string `json:"tags"`
	Series      *string   `json:"series"`
	NumSeries   *float64  `json:"num_series"`
	Description *string   `json:"description"`
	Filename    *string   `json:"filename"`
	Read        *bool     `json:"is_read"`
}

// IsEmpty reports whether the patch carries no changes.
func (p *BookPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Tags == nil &&
		p.Series == nil && p.NumSeries == nil && p.Description == nil &&
		p.Filename == nil && p.Read == nil
}

// Apply merges the patch into the book. Only supplied fields are overwritten.
func (p *BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Tags != nil {
		b.Tags = *p.Tags
	}
	if p.Series != nil {
		b.Series = *p.Series
	}
	if p.NumSeries != nil {
		b.NumSeries = *p.NumSeries
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Filename != nil {
		b.Filename = *p.Filename
	}
	if p.Read != nil {
		b.IsRead = *p.Read
	}
}
