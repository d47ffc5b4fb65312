package domain

// ResourceDashboard is the resource name of the dashboard statistics.
const ResourceDashboard = "dashboard"

// DashboardStats are the headline counters of the back office.
type DashboardStats struct {
	TotalUsers     int        `json:"totalUsers"               yaml:"totalUsers"`
	ActiveUsers    int        `json:"activeUsers"              yaml:"activeUsers"`
	TotalProducts  int        `json:"totalProducts"            yaml:"totalProducts"`
	ActiveProducts int        `json:"activeProducts"           yaml:"activeProducts"`
	LowStock       int        `json:"lowStockProducts"         yaml:"lowStockProducts"`
	TotalCustomers int        `json:"totalCustomers"           yaml:"totalCustomers"`
	TotalLocations int        `json:"totalLocations"           yaml:"totalLocations"`
	RecentActivity []AuditLog `json:"recentActivity,omitempty" yaml:"recentActivity,omitempty"`
}

