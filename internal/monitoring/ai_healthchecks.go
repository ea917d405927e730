package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

// Probe reports whether a classifier endpoint is reachable.
type Probe func(ctx context.Context) bool

// MonitorClassifierHealth stores the probe result in healthy on every tick until ctx ends.
func MonitorClassifierHealth(ctx context.Context, name string, healthy *atomic.Bool, probe Probe) {
	monitor(ctx, name, healthy, probe, HEALTHCHECK_TIMER)
}

func monitor(ctx context.Context, name string, healthy *atomic.Bool, probe Probe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := probe(ctx)
			if healthy.Swap(isHealthy) != isHealthy {
				if isHealthy {
					slog.Info("[HealthCheck] Classifier recovered", slog.String("classifier", name))
				} else {
					slog.Warn("[HealthCheck] Classifier is unhealthy", slog.String("classifier", name))
				}
			}
		}
	}
}
