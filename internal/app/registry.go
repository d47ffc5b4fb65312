package app

import (
	"bytes"
	"context"
	"encoding/json"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/engine/listview"
	"go.trai.ch/backoffice/internal/engine/mutation"
	"go.trai.ch/backoffice/internal/engine/querycache"
	"go.trai.ch/backoffice/internal/engine/resource"
	"go.trai.ch/zerr"
)

// Resource is an entity endpoint addressed by name, with payloads in their JSON form.
// Reads go through the session cache and writes through the session coordinator.
type Resource interface {
	Name() string
	// Source lists the resource for a list view.
	Source() listview.Source
	List(ctx context.Context, state domain.PageState) (any, error)
	Get(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, payload []byte) (any, error)
	Update(ctx context.Context, id string, payload []byte) (any, error)
	Delete(ctx context.Context, id string) error
}

// listing implements the read side shared by every resource. A failed read leaves an
// errored cache entry, so every retry issues a new request.
type listing[T any, F domain.ListFilter] struct {
	coll   *resource.Collection[T, F]
	source listview.Source
	cache  *querycache.Cache
	retry  resource.RetryPolicy
}

func newListing[T any, F domain.ListFilter](s *Session, coll *resource.Collection[T, F], source listview.Source) listing[T, F] {
	return listing[T, F]{coll: coll, source: source, cache: s.Cache, retry: s.retry}
}

func (l listing[T, F]) Name() string {
	return l.coll.Name()
}

func (l listing[T, F]) Source() listview.Source {
	return l.source
}

func (l listing[T, F]) List(ctx context.Context, state domain.PageState) (any, error) {
	key, err := l.source.Key(state)
	if err != nil {
		return nil, err
	}
	return resource.Retry(ctx, l.retry, func(ctx context.Context) (any, error) {
		return l.cache.Fetch(ctx, key, l.source.Fetcher(state))
	})
}

func (l listing[T, F]) Get(ctx context.Context, id string) (any, error) {
	if err := resource.ValidateID(id); err != nil {
		return nil, err
	}
	return resource.Retry(ctx, l.retry, func(ctx context.Context) (T, error) {
		return querycache.Get(ctx, l.cache, l.coll.GetKey(id), func(ctx context.Context) (T, error) {
			return l.coll.Get(ctx, id)
		})
	})
}

func (l listing[T, F]) unsupported(op domain.Operation) error {
	return zerr.With(zerr.Wrap(domain.ErrUnsupportedOperation, string(op)), "resource", l.coll.Name())
}

// entity is a resource with the full set of operations.
type entity[T any, C, U resource.Payload, F domain.ListFilter] struct {
	listing[T, F]
	svc       *resource.Service[T, C, U, F]
	mutations *mutation.Coordinator
}

func newEntity[T any, C, U resource.Payload, F domain.ListFilter](
	s *Session,
	svc *resource.Service[T, C, U, F],
	source listview.Source,
) *entity[T, C, U, F] {
	return &entity[T, C, U, F]{
		listing:   newListing(s, svc.Collection, source),
		svc:       svc,
		mutations: s.Mutations,
	}
}

func (e *entity[T, C, U, F]) Create(ctx context.Context, payload []byte) (any, error) {
	in, err := decodePayload[C](payload)
	if err != nil {
		return nil, err
	}
	return mutation.Run(ctx, e.mutations, mutation.Request{
		Resource:  e.Name(),
		Operation: domain.OpCreate,
		Affects:   domain.WriteAffects(e.Name()),
	}, func(ctx context.Context) (T, error) {
		return e.svc.Create(ctx, in)
	})
}

func (e *entity[T, C, U, F]) Update(ctx context.Context, id string, payload []byte) (any, error) {
	patch, err := decodePayload[U](payload)
	if err != nil {
		return nil, err
	}
	return mutation.Run(ctx, e.mutations, mutation.Request{
		Resource:  e.Name(),
		Operation: domain.OpUpdate,
		ID:        id,
		Affects:   domain.WriteAffects(e.Name()),
	}, func(ctx context.Context) (T, error) {
		return e.svc.Update(ctx, id, patch)
	})
}

func (e *entity[T, C, U, F]) Delete(ctx context.Context, id string) error {
	_, err := e.mutations.Execute(ctx, mutation.Request{
		Resource:  e.Name(),
		Operation: domain.OpDelete,
		ID:        id,
		Affects:   domain.WriteAffects(e.Name()),
		Perform: func(ctx context.Context) (any, error) {
			return nil, e.svc.Delete(ctx, id)
		},
	})
	return err
}

// readOnly is a resource the client can only read, such as the audit trail.
type readOnly[T any, F domain.ListFilter] struct {
	listing[T, F]
}

func newReadOnly[T any, F domain.ListFilter](s *Session, coll *resource.Collection[T, F], source listview.Source) *readOnly[T, F] {
	return &readOnly[T, F]{listing: newListing(s, coll, source)}
}

func (r *readOnly[T, F]) Create(context.Context, []byte) (any, error) {
	return nil, r.unsupported(domain.OpCreate)
}

func (r *readOnly[T, F]) Update(context.Context, string, []byte) (any, error) {
	return nil, r.unsupported(domain.OpUpdate)
}

func (r *readOnly[T, F]) Delete(context.Context, string) error {
	return r.unsupported(domain.OpDelete)
}

// settings exposes the system configuration: settings are read and updated by key only.
type settings struct {
	*readOnly[domain.SystemConfig, domain.SystemConfigFilter]
	svc       *resource.SystemConfigs
	mutations *mutation.Coordinator
}

func newSettings(s *Session, svc *resource.SystemConfigs, source listview.Source) *settings {
	return &settings{
		readOnly:  newReadOnly(s, svc.Collection, source),
		svc:       svc,
		mutations: s.Mutations,
	}
}

func (s *settings) Update(ctx context.Context, key string, payload []byte) (any, error) {
	patch, err := decodePayload[domain.SystemConfigPatch](payload)
	if err != nil {
		return nil, err
	}
	return mutation.Run(ctx, s.mutations, mutation.Request{
		Resource:  s.Name(),
		Operation: domain.OpUpdate,
		ID:        key,
		Affects:   domain.WriteAffects(s.Name()),
	}, func(ctx context.Context) (domain.SystemConfig, error) {
		return s.svc.Update(ctx, key, patch)
	})
}

// decodePayload strictly decodes one JSON object into P. Unknown fields are rejected
// so a misspelt field is reported instead of silently dropped.
func decodePayload[P any](payload []byte) (P, error) {
	var p P
	if len(bytes.TrimSpace(payload)) == 0 {
		return p, zerr.Wrap(domain.ErrInvalidPayload, "payload is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, zerr.With(zerr.Wrap(domain.ErrInvalidPayload, "payload is not valid"), "cause", err.Error())
	}
	if dec.More() {
		return p, zerr.Wrap(domain.ErrInvalidPayload, "payload has trailing data")
	}
	return p, nil
}
