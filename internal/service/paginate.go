package service

// Paginator tracks the current position over a result set whose page size
// is fixed by the remote query. Moving the paginator never slices a
// larger in-memory fetch: every page change is a new filter state and a
// new cache-resolve cycle.
type Paginator struct {
	page       int
	totalPages int
}

// NewPaginator creates a paginator clamped into the valid range.
func NewPaginator(page, totalPages int) *Paginator {
	p := &Paginator{totalPages: totalPages}
	p.page = p.clamp(page)
	return p
}

// Page returns the current page (1-based).
func (p *Paginator) Page() int { return p.page }

// TotalPages returns the page count of the underlying result set.
func (p *Paginator) TotalPages() int { return p.totalPages }

// SetTotalPages updates the page count after a fresh fetch and re-clamps
// the current page.
func (p *Paginator) SetTotalPages(totalPages int) {
	p.totalPages = totalPages
	p.page = p.clamp(p.page)
}

// GoToPage moves to page n, clamped into [1, totalPages], and returns
// the page actually landed on.
func (p *Paginator) GoToPage(n int) int {
	p.page = p.clamp(n)
	return p.page
}

// Target returns the page n would land on, clamped into the valid range,
// without moving the paginator.
func (p *Paginator) Target(n int) int {
	return p.clamp(n)
}

// NextPage advances one page. It is a no-op returning false on the last
// page.
func (p *Paginator) NextPage() bool {
	if !p.HasNextPage() {
		return false
	}
	p.page++
	return true
}

// PrevPage moves back one page. It is a no-op returning false on the
// first page.
func (p *Paginator) PrevPage() bool {
	if !p.HasPrevPage() {
		return false
	}
	p.page--
	return true
}

// HasNextPage reports whether a later page exists.
func (p *Paginator) HasNextPage() bool { return p.page < p.totalPages }

// HasPrevPage reports whether an earlier page exists.
func (p *Paginator) HasPrevPage() bool { return p.page > 1 }

func (p *Paginator) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if p.totalPages > 0 && n > p.totalPages {
		return p.totalPages
	}
	return n
}
