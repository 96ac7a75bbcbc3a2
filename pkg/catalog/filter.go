package catalog

import "strings"

// Match reports whether the term is a case-insensitive substring of the
// book's title, author, any tag, or series name. An empty term matches
// everything.
func Match(b Book, term string) bool {
	if term == "" {
		return true
	}
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

// Filter returns the books matching the term, preserving order. The input
// slice is not modified.
func Filter(books []Book, term string) []Book {
	if term == "" {
		return books
	}
	filtered := make([]Book, 0, len(books))
	for _, b := range books {
		if Match(b, term) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
