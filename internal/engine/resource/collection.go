// Package resource provides typed services for the back-office entities on top
// of the APIClient port. Requests are validated locally before dispatch.
package resource

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
)

// Collection is a read-only entity endpoint: list with filters and get by id.
type Collection[T any, F domain.ListFilter] struct {
	client       ports.APIClient
	name         string
	path         string
	defaultLimit int
}

// NewCollection creates a Collection of the named resource rooted at path.
func NewCollection[T any, F domain.ListFilter](client ports.APIClient, name, path string, defaultLimit int) *Collection[T, F] {
	return &Collection[T, F]{
		client:       client,
		name:         name,
		path:         "/" + strings.Trim(path, "/"),
		defaultLimit: defaultLimit,
	}
}

// Name returns the resource name used in query keys.
func (c *Collection[T, F]) Name() string {
	return c.name
}

// DefaultLimit returns the page size used when a filter leaves the limit unset.
func (c *Collection[T, F]) DefaultLimit() int {
	return c.defaultLimit
}

// ListPath returns the request path of a list call, for example /products?page=1&limit=10.
func (c *Collection[T, F]) ListPath(filter F) string {
	return c.path + "?" + filter.Query(c.defaultLimit).Encode()
}

// ListKey returns the query key of a list call. Filters that produce the same
// request share a key.
func (c *Collection[T, F]) ListKey(filter F) domain.QueryKey {
	return domain.NewQueryKey(c.name, filter.Query(c.defaultLimit).Params())
}

// GetKey returns the query key of a single-entity read.
func (c *Collection[T, F]) GetKey(id string) domain.QueryKey {
	return domain.NewQueryKey(c.name, domain.Params{"id": id})
}

// List fetches one page of entities.
func (c *Collection[T, F]) List(ctx context.Context, filter F) (domain.Paginated[T], error) {
	var out domain.Paginated[T]
	if err := filter.Validate(); err != nil {
		return out, err
	}
	if err := c.client.Do(ctx, http.MethodGet, c.ListPath(filter), nil, &out); err != nil {
		return domain.Paginated[T]{}, err
	}
	return out, nil
}

// Get fetches one entity by id.
func (c *Collection[T, F]) Get(ctx context.Context, id string) (T, error) {
	var out T
	path, err := c.itemPath(id)
	if err != nil {
		return out, err
	}
	if err := c.client.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Collection[T, F]) itemPath(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return c.path + "/" + url.PathEscape(id), nil
}

// ValidateID rejects blank identifiers with a validation error matching domain.ErrInvalidID.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.APIError{
			Kind:    domain.KindValidation,
			Field:   "id",
			Message: "must not be empty",
			Cause:   domain.ErrInvalidID,
		}
	}
	return nil
}
