package app

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/backoffice/internal/engine/listview"
	"go.trai.ch/backoffice/internal/engine/mutation"
	"go.trai.ch/backoffice/internal/engine/querycache"
	"go.trai.ch/backoffice/internal/engine/resource"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Session is one configured connection to the back-office API. All services share
// the session's query cache, so reads made through the session are deduplicated and
// writes made through its coordinator revalidate them.
type Session struct {
	Config domain.Config

	Users        *resource.Users
	Products     *resource.Products
	Customers    *resource.Customers
	Locations    *resource.Locations
	AuditLogs    *resource.AuditLogs
	SystemConfig *resource.SystemConfigs
	Dashboard    *resource.Dashboard

	Cache     *querycache.Cache
	Mutations *mutation.Coordinator

	logger    ports.Logger
	metrics   ports.CacheMetrics
	retry     resource.RetryPolicy
	resources map[string]Resource
	shutdown  func(context.Context) error
	closeOnce sync.Once
}

func newSession(
	cfg domain.Config,
	client ports.APIClient,
	tracer ports.Tracer,
	log ports.Logger,
	metrics ports.CacheMetrics,
	retry resource.RetryPolicy,
	shutdown func(context.Context) error,
) *Session {
	cache := querycache.New(log, tracer, metrics, querycache.WithConfig(cfg.Cache))
	s := &Session{
		Config:       cfg,
		Users:        resource.NewUsers(client),
		Products:     resource.NewProducts(client),
		Customers:    resource.NewCustomers(client),
		Locations:    resource.NewLocations(client),
		AuditLogs:    resource.NewAuditLogs(client),
		SystemConfig: resource.NewSystemConfig(client),
		Dashboard:    resource.NewDashboard(client),
		Cache:        cache,
		Mutations:    mutation.New(cache, log, tracer, metrics),
		logger:       log,
		metrics:      metrics,
		retry:        retry,
		shutdown:     shutdown,
	}

	s.resources = make(map[string]Resource)
	s.register(
		newEntity(s, s.Users, listview.ForCollection(s.Users.Collection)),
		newEntity(s, s.Products, listview.ForCollection(s.Products.Collection)),
		newEntity(s, s.Customers, listview.ForCollection(s.Customers.Collection)),
		newEntity(s, s.Locations, listview.ForCollection(s.Locations.Collection)),
		newReadOnly(s, s.AuditLogs, listview.ForCollection(s.AuditLogs)),
		newSettings(s, s.SystemConfig, listview.ForCollection(s.SystemConfig.Collection)),
	)
	return s
}

func (s *Session) register(resources ...Resource) {
	for _, r := range resources {
		s.resources[r.Name()] = r
	}
}

// Resource returns the resource registered under name.
func (s *Session) Resource(name string) (Resource, error) {
	r, ok := s.resources[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownResource, name), "known", s.ResourceNames())
	}
	return r, nil
}

// ResourceNames lists the registered resources in alphabetical order.
func (s *Session) ResourceNames() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DashboardStats returns the dashboard counters through the cache.
func (s *Session) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	return resource.Retry(ctx, s.retry, func(ctx context.Context) (domain.DashboardStats, error) {
		return querycache.Get(ctx, s.Cache, s.Dashboard.Key(), s.Dashboard.Stats)
	})
}

// Prefetch loads the first page of every named resource concurrently so later reads
// are served from the cache. No names means every registered resource and the dashboard.
// Each read is repeated on network failures as configured by Options.Retries.
func (s *Session) Prefetch(ctx context.Context, names ...string) error {
	withDashboard := len(names) == 0
	if withDashboard {
		names = s.ResourceNames()
	}

	resources := make([]Resource, 0, len(names))
	for _, name := range names {
		r, err := s.Resource(name)
		if err != nil {
			return err
		}
		resources = append(resources, r)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range resources {
		g.Go(func() error {
			if _, err := r.List(ctx, domain.PageState{Page: 1}); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to list"), "resource", r.Name())
			}
			return nil
		})
	}
	if withDashboard {
		g.Go(func() error {
			_, err := s.DashboardStats(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return zerr.Wrap(err, "prefetch failed")
	}
	s.logger.Debug("prefetch complete")
	return nil
}

// Close stops the cache and flushes telemetry. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.Cache.Close()
		if s.shutdown != nil {
			err = s.shutdown(ctx)
		}
	})
	return err
}
