package ports

import "go.trai.ch/backoffice/internal/core/domain"

// ConfigLoader defines the interface for loading the client configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the effective configuration. An explicit path is read as is.
	// Otherwise the config file is searched for from cwd upwards, falling back to the
	// per-user config file and then to defaults. Environment overrides apply last.
	Load(cwd, path string) (domain.Config, error)
}
