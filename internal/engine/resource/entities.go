package resource

import (
	"context"
	"net/http"

	"go.trai.ch/backoffice/internal/core/domain"
	"go.trai.ch/backoffice/internal/core/ports"
)

type (
	// Users manages back-office accounts.
	Users = Service[domain.User, domain.UserInput, domain.UserPatch, domain.UserFilter]
	// Products manages the product catalogue.
	Products = Service[domain.Product, domain.ProductInput, domain.ProductPatch, domain.ProductFilter]
	// Customers manages customer records.
	Customers = Service[domain.Customer, domain.CustomerInput, domain.CustomerPatch, domain.CustomerFilter]
	// Locations manages warehouses, stores and offices.
	Locations = Service[domain.Location, domain.LocationInput, domain.LocationPatch, domain.LocationFilter]
	// AuditLogs reads the audit trail. Entries are written by the server only.
	AuditLogs = Collection[domain.AuditLog, domain.AuditLogFilter]
)

// Default page sizes per entity.
const (
	UsersLimit        = 10
	ProductsLimit     = 10
	CustomersLimit    = 10
	LocationsLimit    = 20
	AuditLogsLimit    = 50
	SystemConfigLimit = 50
)

// NewUsers returns the users service.
func NewUsers(client ports.APIClient) *Users {
	return NewService[domain.User, domain.UserInput, domain.UserPatch, domain.UserFilter](
		client, domain.ResourceUsers, "/users", UsersLimit)
}

// NewProducts returns the products service.
func NewProducts(client ports.APIClient) *Products {
	return NewService[domain.Product, domain.ProductInput, domain.ProductPatch, domain.ProductFilter](
		client, domain.ResourceProducts, "/products", ProductsLimit)
}

// NewCustomers returns the customers service.
func NewCustomers(client ports.APIClient) *Customers {
	return NewService[domain.Customer, domain.CustomerInput, domain.CustomerPatch, domain.CustomerFilter](
		client, domain.ResourceCustomers, "/customers", CustomersLimit)
}

// NewLocations returns the locations service.
func NewLocations(client ports.APIClient) *Locations {
	return NewService[domain.Location, domain.LocationInput, domain.LocationPatch, domain.LocationFilter](
		client, domain.ResourceLocations, "/locations", LocationsLimit)
}

// NewAuditLogs returns the read-only audit trail collection.
func NewAuditLogs(client ports.APIClient) *AuditLogs {
	return NewCollection[domain.AuditLog, domain.AuditLogFilter](
		client, domain.ResourceAuditLogs, "/audit-logs", AuditLogsLimit)
}

// SystemConfigs reads settings and updates them by key. Settings cannot be
// created or deleted from the client.
type SystemConfigs struct {
	*Collection[domain.SystemConfig, domain.SystemConfigFilter]
}

// NewSystemConfig returns the system configuration service.
func NewSystemConfig(client ports.APIClient) *SystemConfigs {
	return &SystemConfigs{
		Collection: NewCollection[domain.SystemConfig, domain.SystemConfigFilter](
			client, domain.ResourceSystemConfig, "/system-config", SystemConfigLimit),
	}
}

// Update changes the setting stored under key.
func (s *SystemConfigs) Update(ctx context.Context, key string, patch domain.SystemConfigPatch) (domain.SystemConfig, error) {
	path, err := s.itemPath(key)
	if err != nil {
		return domain.SystemConfig{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.SystemConfig{}, err
	}
	var out domain.SystemConfig
	if err := s.client.Do(ctx, http.MethodPatch, path, patch, &out); err != nil {
		return domain.SystemConfig{}, err
	}
	return out, nil
}

// Dashboard reads the headline counters.
type Dashboard struct {
	client ports.APIClient
}

// NewDashboard returns the dashboard service.
func NewDashboard(client ports.APIClient) *Dashboard {
	return &Dashboard{client: client}
}

// Key returns the query key of the statistics.
func (d *Dashboard) Key() domain.QueryKey {
	return domain.NewQueryKey(domain.ResourceDashboard, nil)
}

// Stats fetches the statistics.
func (d *Dashboard) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := d.client.Do(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return domain.DashboardStats{}, err
	}
	return out, nil
}
