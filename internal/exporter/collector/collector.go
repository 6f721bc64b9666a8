package collector

import (
	"context"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wireguard"
)

// Collector produces a fresh aggregated model of the live interface state.
// Implementations perform all external I/O here; everything downstream
// operates on in-memory data only.
type Collector interface {
	Collect(ctx context.Context) (*wireguard.Model, error)
}
