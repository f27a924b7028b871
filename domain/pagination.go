package domain

// Pagination is the shared page/limit offset pagination metadata returned by
// both top-level comment and reply listings. TotalItems is surfaced to the
// wire as totalComments or totalReplies depending on the listing.
type Pagination struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes pagination metadata for a page of size limit out of
// total matching records. page and limit are assumed already clamped to >= 1.
func NewPagination(page, limit, total int64) Pagination {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// ClampPage defaults page to 1 and limit to def when non-positive, matching
// the reference behavior of defaulting invalid or absent values.
func ClampPage(page, limit, def int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	return page, limit
}
