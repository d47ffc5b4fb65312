package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/backoffice/internal/app"
)

func (c *CLI) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				stats, err := s.DashboardStats(cmd.Context())
				if err != nil {
					return err
				}
				if p.format != formatText {
					return p.value(stats)
				}

				p.line(p.heading.Render("dashboard"))
				for _, row := range []struct {
					label string
					value string
				}{
					{"users", fmt.Sprintf("%d (%d active)", stats.TotalUsers, stats.ActiveUsers)},
					{"products", fmt.Sprintf("%d (%d active)", stats.TotalProducts, stats.ActiveProducts)},
					{"low stock", fmt.Sprintf("%d", stats.LowStock)},
					{"customers", fmt.Sprintf("%d", stats.TotalCustomers)},
					{"locations", fmt.Sprintf("%d", stats.TotalLocations)},
				} {
					p.line("  " + p.label.Render(fmt.Sprintf("%-10s", row.label)) + " " + row.value)
				}
				for _, entry := range stats.RecentActivity {
					p.line("  " + p.label.Render(entry.CreatedAt.Format("2006-01-02 15:04")) + " " + string(entry.Action) + " " + entry.Entity)
				}
				return nil
			})
		},
	}
}
