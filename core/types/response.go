package types

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse acknowledges an operation without a payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OkResponse is the short acknowledgement used by archive endpoints
type OkResponse struct {
	Ok bool `json:"ok"`
}

// PaginatedResponse wraps a page of items
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page returned in a PaginatedResponse
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items for the requested page. A nil limit returns every
// item as a single page.
func Paginate[T any](items []T, page, limit *int) ([]T, Pagination) {
	total := len(items)
	p := 1
	if page != nil && *page > 0 {
		p = *page
	}

	size := total
	if limit != nil && *limit > 0 {
		size = *limit
	}

	if size == 0 {
		return items, Pagination{Total: 0, Page: 1, PageSize: 0, TotalPages: 1}
	}

	totalPages := 1
	if size < total {
		totalPages = (total + size - 1) / size
	}

	// pages past the end are empty; checking before multiplying keeps huge
	// page numbers from overflowing
	start := total
	if p-1 < totalPages {
		start = (p - 1) * size
	}
	end := total
	if size < total-start {
		end = start + size
	}

	return items[start:end], Pagination{
		Total:      total,
		Page:       p,
		PageSize:   size,
		TotalPages: totalPages,
	}
}
