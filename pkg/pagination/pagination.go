package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPage is the first page
	DefaultPage = 1
	// DefaultLimit is the default page size
	DefaultLimit = 20
	// MaxLimit caps the page size
	MaxLimit = 100
)

// Params holds page/limit query parameters
type Params struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page is a paginated result set
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ParseParams reads page and limit from the query string.
// Missing values take defaults; malformed or out of range values are an error.
func ParseParams(c *gin.Context) (Params, error) {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, fmt.Errorf("page must be a positive integer")
		}
		p.Page = page
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, fmt.Errorf("limit must be a positive integer")
		}
		if limit > MaxLimit {
			return p, fmt.Errorf("limit must not exceed %d", MaxLimit)
		}
		p.Limit = limit
	}

	return p, nil
}

// TotalPages returns ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// NewPage assembles a Page, never returning a nil Items slice
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}
