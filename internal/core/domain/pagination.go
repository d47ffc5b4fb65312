package domain

import (
	"maps"
	"net/url"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Pagination is the metadata returned with every list response.
type Pagination struct {
	Page       int `json:"page"       yaml:"page"`
	Limit      int `json:"limit"      yaml:"limit"`
	Total      int `json:"total"      yaml:"total"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
}

// PageInfo is implemented by list results that carry pagination metadata.
type PageInfo interface {
	PageMeta() Pagination
}

// Paginated is a page of items of type T.
type Paginated[T any] struct {
	Items      []T        `json:"items"      yaml:"items"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// PageMeta implements PageInfo.
func (p Paginated[T]) PageMeta() Pagination {
	return p.Pagination
}

// PageState is the pagination and filter state of one list view.
type PageState struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Normalize returns the state with Page forced to at least 1.
func (s PageState) Normalize() PageState {
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Clamp bounds Page to [1, totalPages]. A result with zero pages clamps to page 1.
// It reports whether the page changed.
func (s *PageState) Clamp(totalPages int) bool {
	last := max(totalPages, 1)
	page := min(max(s.Page, 1), last)
	if page == s.Page {
		return false
	}
	s.Page = page
	return true
}

// WithFilter returns a copy of the state with the filter applied and the page reset to 1.
// An empty value removes the filter.
func (s PageState) WithFilter(field, value string) PageState {
	filters := make(map[string]string, len(s.Filters)+1)
	maps.Copy(filters, s.Filters)
	if value == "" {
		delete(filters, field)
	} else {
		filters[field] = value
	}
	s.Filters = filters
	s.Page = 1
	return s
}

// ValidateFilters rejects page and limit among the filters. The position of a view
// is carried by Page and PageSize only, so the clamp always governs it.
func (s PageState) ValidateFilters() error {
	for field := range s.Filters {
		switch field {
		case "page", "limit":
			return zerr.With(zerr.Wrap(ErrInvalidFilter, "page and limit are not filter fields"), "field", field)
		}
	}
	return nil
}

// QueryParams is an ordered list of query-string parameters.
// Insertion order is kept so page and limit always lead the query string.
type QueryParams struct {
	names  []string
	values []string
}

// Add appends a parameter. Empty values are dropped: an empty string would otherwise
// filter for "field equals empty" instead of "no filter".
func (q *QueryParams) Add(name, value string) {
	if value == "" {
		return
	}
	q.names = append(q.names, name)
	q.values = append(q.values, value)
}

// AddInt appends an integer parameter.
func (q *QueryParams) AddInt(name string, value int) {
	q.Add(name, strconv.Itoa(value))
}

// AddBool appends a boolean parameter when it is set.
func (q *QueryParams) AddBool(name string, value *bool) {
	if value == nil {
		return
	}
	q.Add(name, strconv.FormatBool(*value))
}

// Get returns the first value stored under name.
func (q QueryParams) Get(name string) (string, bool) {
	for i, n := range q.names {
		if n == name {
			return q.values[i], true
		}
	}
	return "", false
}

// Len returns the number of parameters.
func (q QueryParams) Len() int {
	return len(q.names)
}

// Encode renders the parameters as a URL query string in insertion order.
func (q QueryParams) Encode() string {
	var b strings.Builder
	for i, name := range q.names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.values[i]))
	}
	return b.String()
}

// Params converts the parameters into a query key parameter set.
func (q QueryParams) Params() Params {
	p := make(Params, len(q.names))
	for i, name := range q.names {
		p.Set(name, q.values[i])
	}
	return p
}

// ListOptions are the options shared by every list endpoint.
type ListOptions struct {
	Page   int    `json:"page,omitempty"   yaml:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"  yaml:"limit,omitempty"`
	Search string `json:"search,omitempty" yaml:"search,omitempty"`
}

// Query returns page, limit and search as query parameters.
// Non-positive page becomes 1 and non-positive limit becomes defaultLimit.
func (o ListOptions) Query(defaultLimit int) QueryParams {
	var q QueryParams
	page := o.Page
	if page < 1 {
		page = 1
	}
	limit := o.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	q.AddInt("page", page)
	q.AddInt("limit", limit)
	q.Add("search", strings.TrimSpace(o.Search))
	return q
}

// SetOption parses one of the shared options from a string.
// It reports false when field is not a shared option.
func (o *ListOptions) SetOption(field, value string) (bool, error) {
	switch field {
	case "page":
		n, err := parsePositive(field, value)
		if err != nil {
			return true, err
		}
		o.Page = n
	case "limit":
		n, err := parsePositive(field, value)
		if err != nil {
			return true, err
		}
		o.Limit = n
	case "search":
		o.Search = value
	default:
		return false, nil
	}
	return true, nil
}

// ListFilter is implemented by every entity filter value.
type ListFilter interface {
	// Query renders the filter as ordered query parameters with empty values omitted.
	Query(defaultLimit int) QueryParams
	// Validate checks the filter before any request is made.
	Validate() error
}

// FilterSetter is implemented by pointers to entity filters. It assigns a field from
// its string form, as given on the command line.
type FilterSetter interface {
	Set(field, value string) error
}
