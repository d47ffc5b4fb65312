package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/backoffice/internal/app"
	"go.trai.ch/backoffice/internal/engine/listview"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <resource>",
		Short: "Keep a list page up to date until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := pageState(cmd)
			if err != nil {
				return err
			}
			interval, _ := cmd.Flags().GetDuration("interval")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			return c.withSession(cmd, func(s *app.Session, p *printer) error {
				return s.Watch(cmd.Context(), app.WatchOptions{
					Resource:    args[0],
					State:       state,
					Interval:    interval,
					MetricsAddr: metricsAddr,
				}, func(snap listview.Snapshot) error {
					return p.snapshot(args[0], snap)
				})
			})
		},
	}
	addPageFlags(cmd)
	cmd.Flags().Duration("interval", app.DefaultWatchInterval, "Revalidation interval")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while watching")
	return cmd
}
