package resource

import (
	"context"
	"net/http"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
)

// Payload is a create or update body that can be checked before it is sent.
type Payload interface {
	Validate() error
}

// Service is a Collection that also supports create, partial update and delete.
type Service[T any, C, U Payload, F domain.ListFilter] struct {
	*Collection[T, F]
}

// NewService creates a Service of the named resource rooted at path.
func NewService[T any, C, U Payload, F domain.ListFilter](client ports.APIClient, name, path string, defaultLimit int) *Service[T, C, U, F] {
	return &Service[T, C, U, F]{Collection: NewCollection[T, F](client, name, path, defaultLimit)}
}

// Create validates in and posts it. The created entity is returned.
func (s *Service[T, C, U, F]) Create(ctx context.Context, in C) (T, error) {
	var out T
	if err := in.Validate(); err != nil {
		return out, err
	}
	if err := s.client.Do(ctx, http.MethodPost, s.path, in, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Update validates patch and sends only its provided fields.
func (s *Service[T, C, U, F]) Update(ctx context.Context, id string, patch U) (T, error) {
	var out T
	path, err := s.itemPath(id)
	if err != nil {
		return out, err
	}
	if err := patch.Validate(); err != nil {
		return out, err
	}
	if err := s.client.Do(ctx, http.MethodPatch, path, patch, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes the entity with the given id.
func (s *Service[T, C, U, F]) Delete(ctx context.Context, id string) error {
	path, err := s.itemPath(id)
	if err != nil {
		return err
	}
	return s.client.Do(ctx, http.MethodDelete, path, nil, nil)
}
