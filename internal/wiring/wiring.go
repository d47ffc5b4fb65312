// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/backoffice/internal/adapters/config"
	_ "go.trai.ch/backoffice/internal/adapters/logger"
	_ "go.trai.ch/backoffice/internal/adapters/metrics"
	// Register app nodes.
	_ "go.trai.ch/backoffice/internal/app"
)
