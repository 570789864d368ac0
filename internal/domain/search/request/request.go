// Package request holds the validated search request.
package request

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/influencersphere/internal/domain/search/filter"
)

// Page size limits used when the caller configures none.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Request is a validated search query: predicates plus a page window.
// Zero page or page size means "use the default".
type Request struct {
	criteria filter.Criteria
	page     int
	pageSize int
}

// New validates paging parameters and creates a Request.
func New(criteria filter.Criteria, page, pageSize int) (Request, error) {
	if page < 0 {
		return Request{}, fmt.Errorf("page must be positive")
	}
	if pageSize < 0 {
		return Request{}, fmt.Errorf("limit must be positive")
	}
	return Request{criteria: criteria, page: page, pageSize: pageSize}, nil
}

// Criteria returns the predicates.
func (r Request) Criteria() filter.Criteria { return r.criteria }

// Page returns the 1-based page number, or 0 when unset.
func (r Request) Page() int { return r.page }

// PageSize returns the requested page size, or 0 when unset.
func (r Request) PageSize() int { return r.pageSize }

// Window resolves page and page size against the given default and cap.
// It returns the 1-based page, the effective size and the slice offset.
// An offset that would overflow int saturates at math.MaxInt.
func (r Request) Window(defaultSize, maxSize int) (page, size, offset int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	page = r.page
	if page == 0 {
		page = 1
	}
	size = r.pageSize
	if size == 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	if page-1 > math.MaxInt/size {
		return page, size, math.MaxInt
	}
	return page, size, (page - 1) * size
}
