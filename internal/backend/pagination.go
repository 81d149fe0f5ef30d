package backend

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// MaxPageSize bounds the page size accepted from callers.
const MaxPageSize = 100

var ErrPageOutOfRange = errors.New("page out of range")

// Page is the paginated list shape returned by backend list endpoints.
// The backend's page numbering is zero-based.
type Page[T any] struct {
	Items         []T `json:"items"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	CurrentPage   int `json:"currentPage"`
}

// PageQuery translates a caller-facing 1-based page and a size bound into
// backend query parameters. Callers validate before any network call: page
// < 1 or size outside [1,MaxPageSize] is rejected.
func PageQuery(page, size int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("%w: page %d", ErrPageOutOfRange, page)
	}
	if size < 1 || size > MaxPageSize {
		return "", fmt.Errorf("%w: size %d", ErrPageOutOfRange, size)
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page-1))
	q.Set("size", strconv.Itoa(size))
	return q.Encode(), nil
}
