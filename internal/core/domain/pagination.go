package domain

// Pagination mirrors the paging block attached to every list payload.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a remote collection.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Pages returns the page count of the collection.
func (p Page[T]) Pages() int {
	return p.Pagination.TotalPages
}

// NewPagination builds a consistent paging block: TotalPages is always
// ceil(total / limit).
func NewPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total / limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}

// ClampPage bounds a 1-indexed page to [1, totalPages]. An unknown or empty
// collection (totalPages < 1) only enforces the lower bound.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		page = 1
	}
	if totalPages >= 1 && page > totalPages {
		page = totalPages
	}
	return page
}

// PageEllipsis marks a gap in a pager window.
const PageEllipsis = 0

// PageWindow returns the page numbers a pager shows around current. Gaps are
// encoded as PageEllipsis.
//
//	PageWindow(1, 5)  -> 1 2 3 4 5
//	PageWindow(6, 12) -> 1 … 5 6 7 … 12
func PageWindow(current, totalPages int) []int {
	items := make([]int, 0, 7)
	if totalPages <= 7 {
		for i := 1; i <= totalPages; i++ {
			items = append(items, i)
		}
		return items
	}

	items = append(items, 1)
	if current > 3 {
		items = append(items, PageEllipsis)
	}

	start := max(2, current-1)
	end := min(totalPages-1, current+1)
	for i := start; i <= end; i++ {
		items = append(items, i)
	}

	if current < totalPages-2 {
		items = append(items, PageEllipsis)
	}
	items = append(items, totalPages)
	return items
}
