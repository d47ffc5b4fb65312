package metrics

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/backoffice/internal/core/ports"
)

// NodeID is the unique identifier for the cache metrics Graft node.
const NodeID graft.ID = "adapter.metrics"

func init() {
	graft.Register(graft.Node[ports.CacheMetrics]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CacheMetrics, error) {
			return NewPrometheus(), nil
		},
	})
}
