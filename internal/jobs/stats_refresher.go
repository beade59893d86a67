package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/metrics"
	"driver-rewards/internal/models"
	"driver-rewards/internal/services"
)

// StatsRefresher periodically publishes platform totals as Prometheus gauges
type StatsRefresher struct {
	adminService *services.AdminService
	interval     time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewStatsRefresher creates a new stats refresher job
func NewStatsRefresher(adminService *services.AdminService, interval time.Duration) *StatsRefresher {
	return &StatsRefresher{
		adminService: adminService,
		interval:     interval,
		stopChan:     make(chan struct{}),
	}
}

// Start runs one refresh immediately, then every interval until Stop
func (r *StatsRefresher) Start() {
	logger.Log.Info("Starting stats refresher", zap.Duration("interval", r.interval))

	r.Refresh(context.Background())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Refresh(context.Background())
		case <-r.stopChan:
			logger.Log.Info("Stopping stats refresher")
			return
		}
	}
}

// Stop ends the refresh loop
func (r *StatsRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

// Refresh reads the current totals and updates the gauges
func (r *StatsRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats, err := r.adminService.Stats(ctx)
	if err != nil {
		logger.Log.Warn("Failed to refresh platform stats", zap.Error(err))
		return
	}

	for role, count := range stats.UsersByRole {
		metrics.Users.WithLabelValues(string(role)).Set(float64(count))
	}
	for status, count := range stats.ApplicationsByStatus {
		metrics.Applications.WithLabelValues(string(status)).Set(float64(count))
	}
	metrics.OutstandingPoints.Set(float64(stats.OutstandingPoints))

	logger.Log.Debug("Platform stats refreshed",
		zap.Int64("pending_applications", stats.ApplicationsByStatus[models.ApplicationStatusPending]),
		zap.Int64("outstanding_points", stats.OutstandingPoints),
	)
}
