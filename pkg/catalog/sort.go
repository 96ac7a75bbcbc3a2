package catalog

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the field books are ordered by.
type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByAuthor    SortKey = "author"
	SortByDateAdded SortKey = "added"
	SortBySeries    SortKey = "series"
	SortByRead      SortKey = "read"
)

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

// SortState tracks the active sort column and direction, the way a
// clickable table header behaves.
type SortState struct {
	Key   SortKey
	Order Order
}

// DefaultSortState is the catalog's initial ordering: newest first.
func DefaultSortState() SortState {
	return SortState{Key: SortByDateAdded, Order: Descending}
}

// Toggle returns the state after clicking the given column: clicking the
// active column flips the direction, clicking a new column selects it
// ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Order == Ascending {
			return SortState{Key: key, Order: Descending}
		}
		return SortState{Key: key, Order: Ascending}
	}
	return SortState{Key: key, Order: Ascending}
}

var sortCollator = collate.New(language.Und, collate.IgnoreCase)

// Sort returns a sorted copy of the books. String fields compare
// case-insensitively; dates compare by instant. The sort is stable, so
// equal elements keep their relative order.
func Sort(books []Book, state SortState) []Book {
	sorted := slices.Clone(books)

	var cmp func(a, b Book) int
	switch state.Key {
	case SortByTitle:
		cmp = func(a, b Book) int { return sortCollator.CompareString(a.Title, b.Title) }
	case SortByAuthor:
		cmp = func(a, b Book) int { return sortCollator.CompareString(a.Author, b.Author) }
	case SortBySeries:
		cmp = func(a, b Book) int {
			if c := sortCollator.CompareString(a.Series, b.Series); c != 0 {
				return c
			}
			if a.NumSeries < b.NumSeries {
				return -1
			}
			if a.NumSeries > b.NumSeries {
				return 1
			}
			return 0
		}
	case SortByRead:
		cmp = func(a, b Book) int {
			if a.IsRead == b.IsRead {
				return 0
			}
			if !a.IsRead {
				return -1
			}
			return 1
		}
	default:
		cmp = func(a, b Book) int { return a.Added.Compare(b.Added) }
	}

	if state.Order == Descending {
		inner := cmp
		cmp = func(a, b Book) int { return -inner(a, b) }
	}

	slices.SortStableFunc(sorted, cmp)
	return sorted
}
