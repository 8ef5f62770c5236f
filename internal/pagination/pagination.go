package pagination

import (
	"math"

	"gorm.io/gorm"
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or page_size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// SearchPageSize is the fixed page size for autocomplete searches.
const SearchPageSize = 20

// SearchRequest holds autocomplete query parameters.
type SearchRequest struct {
	Q    string `form:"q"`
	Page int    `form:"page" binding:"omitempty,min=1"`
}

// Defaults fills in the default page when not provided.
func (s *SearchRequest) Defaults() {
	if s.Page == 0 {
		s.Page = 1
	}
}

// Offset returns the SQL OFFSET for the current search page.
func (s *SearchRequest) Offset() int {
	return (s.Page - 1) * SearchPageSize
}

// SearchResult is a single autocomplete match.
type SearchResult struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SearchPagination signals whether more pages of results exist.
type SearchPagination struct {
	More bool `json:"more"`
}

// SearchResponse is the envelope returned by autocomplete endpoints.
// The shape matches what select-style widgets expect.
type SearchResponse struct {
	Results    []SearchResult   `json:"results"`
	Pagination SearchPagination `json:"pagination"`
}

// NewSearchResponse builds a SearchResponse, computing the More flag from
// the total match count and the requested page.
func NewSearchResponse(results []SearchResult, page int, totalItems int64) SearchResponse {
	if results == nil {
		results = []SearchResult{}
	}
	return SearchResponse{
		Results:    results,
		Pagination: SearchPagination{More: int64(page*SearchPageSize) < totalItems},
	}
}
