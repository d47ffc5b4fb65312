package listview

import (
	"context"
	"strconv"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/engine/querycache"
	"go.trai.ch/backoffice/internal/engine/resource"
)

// Source maps a page state to the query it displays.
type Source interface {
	// Key returns the query key of state. It fails when a filter cannot be applied.
	Key(state domain.PageState) (domain.QueryKey, error)
	// Fetcher returns the fetch of state. Its result must implement domain.PageInfo.
	Fetcher(state domain.PageState) querycache.Fetcher
}

// filterPtr constrains PF to pointers to F that accept string filters.
type filterPtr[F any] interface {
	*F
	domain.FilterSetter
}

type collectionSource[T any, F domain.ListFilter, PF filterPtr[F]] struct {
	coll *resource.Collection[T, F]
}

// ForCollection returns a Source listing coll. Page state filters are applied
// with the entity filter's Set method.
func ForCollection[T any, F domain.ListFilter, PF filterPtr[F]](coll *resource.Collection[T, F]) Source {
	return collectionSource[T, F, PF]{coll: coll}
}

func (s collectionSource[T, F, PF]) filter(state domain.PageState) (F, error) {
	var f F
	pf := PF(&f)
	state = state.Normalize()
	if err := state.ValidateFilters(); err != nil {
		return f, err
	}
	if err := pf.Set("page", strconv.Itoa(state.Page)); err != nil {
		return f, err
	}
	if state.PageSize > 0 {
		if err := pf.Set("limit", strconv.Itoa(state.PageSize)); err != nil {
			return f, err
		}
	}
	for field, value := range state.Filters {
		if value == "" {
			continue
		}
		if err := pf.Set(field, value); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (s collectionSource[T, F, PF]) Key(state domain.PageState) (domain.QueryKey, error) {
	f, err := s.filter(state)
	if err != nil {
		return domain.QueryKey{}, err
	}
	if err := f.Validate(); err != nil {
		return domain.QueryKey{}, err
	}
	return s.coll.ListKey(f), nil
}

func (s collectionSource[T, F, PF]) Fetcher(state domain.PageState) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		f, err := s.filter(state)
		if err != nil {
			return nil, err
		}
		return s.coll.List(ctx, f)
	}
}
