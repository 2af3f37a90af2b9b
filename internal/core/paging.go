package core

// Page navigation directions.
const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

// Direction selects which way Advance moves through the pages.
type Direction string

// TotalPages returns how many pages of pageSize items itemCount fills,
// rounding up. Zero items means zero pages; a non-positive page size also
// yields zero rather than dividing by it.
func TotalPages(itemCount, pageSize int) int {
	if itemCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (itemCount + pageSize - 1) / pageSize
}

// PageSlice returns the page-th slice of pageSize items, pages numbered
// from 1. A page beyond the end yields an empty slice, never an error.
func PageSlice[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Advance moves page one step in dir, staying within [1, totalPages].
// Stepping past either edge is a no-op, so repeated "next" on the last
// page never wraps or errors.
func Advance(dir Direction, page, totalPages int) int {
	switch dir {
	case Next:
		if page < totalPages {
			return page + 1
		}
	case Previous:
		if page > 1 {
			return page - 1
		}
	}
	return page
}

// ClampPage pulls page back into range after the underlying collection
// changed size. A collection that shrank below the current page would
// otherwise leave the pager stranded on an empty slice.
func ClampPage(page, totalPages int) int {
	if totalPages == 0 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	if page < 1 {
		return 1
	}
	return page
}
