package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/backoffice/internal/core/domain"
)

const redacted = "********"

// configView is the printable form of the effective configuration.
type configView struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	API    struct {
		BaseURL   string  `json:"baseURL"   yaml:"baseURL"`
		Token     string  `json:"token"     yaml:"token"`
		Timeout   string  `json:"timeout"   yaml:"timeout"`
		RateLimit float64 `json:"rateLimit" yaml:"rateLimit"`
		Burst     int     `json:"burst"     yaml:"burst"`
	} `json:"api" yaml:"api"`
	Cache struct {
		StaleTime string `json:"staleTime" yaml:"staleTime"`
		GCTime    string `json:"gcTime"    yaml:"gcTime"`
	} `json:"cache" yaml:"cache"`
	Log struct {
		Level string `json:"level" yaml:"level"`
		JSON  bool   `json:"json"  yaml:"json"`
	} `json:"log" yaml:"log"`
	Telemetry struct {
		Tracing bool `json:"tracing" yaml:"tracing"`
	} `json:"telemetry" yaml:"telemetry"`
}

func newConfigView(cfg domain.Config) configView {
	var v configView
	v.Source = cfg.Source
	v.API.BaseURL = cfg.API.BaseURL
	if cfg.API.Token != "" {
		v.API.Token = redacted
	}
	v.API.Timeout = cfg.API.Timeout.String()
	v.API.RateLimit = cfg.API.RateLimit
	v.API.Burst = cfg.API.Burst
	v.Cache.StaleTime = cfg.Cache.StaleTime.String()
	v.Cache.GCTime = cfg.Cache.GCTime.String()
	v.Log.Level = cfg.Log.Level
	v.Log.JSON = cfg.Log.JSON
	v.Telemetry.Tracing = cfg.Telemetry.Tracing
	return v
}

func (c *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the client configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with the token redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			cfg, err := c.app.Config(options(cmd))
			if err != nil {
				return err
			}
			return p.value(newConfigView(cfg))
		},
	})
	return cmd
}
