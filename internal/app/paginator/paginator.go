// Package paginator splits listings into numbered pages. Out-of-range
// requests are clamped rather than rejected, so every request renders a page.
package paginator

import "strconv"

// Page is one window of a listing.
type Page struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

// New resolves the raw page parameter against count items split into pages
// of perPage. A missing or non-numeric parameter yields page 1. A number
// outside [1, NumPages] yields the last page.
func New(count, perPage int, raw string) Page {
	if perPage <= 0 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	numPages := (count + perPage - 1) / perPage
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return Page{Number: number, NumPages: numPages, Count: count, PerPage: perPage}
}

// Offset is the zero-based index of the first item on the page.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Limit is the page size.
func (p Page) Limit() int { return p.PerPage }

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) HasOtherPages() bool { return p.HasPrevious() || p.HasNext() }

func (p Page) PreviousPageNumber() int { return p.Number - 1 }

func (p Page) NextPageNumber() int { return p.Number + 1 }

// StartIndex is the 1-based index of the first item, or 0 on an empty listing.
func (p Page) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (p Page) EndIndex() int {
	end := p.Offset() + p.PerPage
	if end > p.Count {
		end = p.Count
	}
	return end
}

// PageRange lists every page number, for rendering navigation.
func (p Page) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// Clamp caps a listing at max items, the way a sliced queryset caps the
// group page before it is paginated.
func Clamp(count, max int) int {
	if max > 0 && count > max {
		return max
	}
	return count
}
