package health

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go_ngxmgr/internal/cache"
	"go_ngxmgr/internal/model"
)

// Lister is the store dependency of the worker
type Lister interface {
	Upstreams(ctx context.Context) ([]model.Upstream, error)
}

// ResultStore keeps the most recent sweep
type ResultStore interface {
	Put(ctx context.Context, key string, v any) error
}

// WorkerConfig holds the configuration for the health check worker
type WorkerConfig struct {
	Monitor  *Monitor
	Lister   Lister
	Results  ResultStore
	Logger   *logrus.Logger
	Interval time.Duration
}

// Worker for upstream health checks
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	monitor  *Monitor
	lister   Lister
	results  ResultStore
	logger   *logrus.Entry
	interval time.Duration
	done     chan struct{}
}

// NewWorker creates a new health check worker
func NewWorker(cfg *WorkerConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Worker{
		ctx:      ctx,
		cancel:   cancel,
		monitor:  cfg.Monitor,
		lister:   cfg.Lister,
		results:  cfg.Results,
		logger:   cfg.Logger.WithField("component", "upstream-health-worker"),
		interval: cfg.Interval,
		done:     make(chan struct{}),
	}
}

// Start begins the periodic health checks; the first sweep runs immediately
func (w *Worker) Start() {
	w.logger.WithField("interval", w.interval).Info("Starting upstream health worker...")
	ticker := time.NewTicker(w.interval)
	go func() {
		defer close(w.done)
		defer ticker.Stop()

		w.tick()
		for {
			select {
			case <-ticker.C:
				w.tick()
			case <-w.ctx.Done():
				w.logger.Info("Stopping upstream health worker...")
				return
			}
		}
	}()
}

// Stop gracefully stops the worker and waits for the loop to exit
func (w *Worker) Stop() {
	w.cancel()
	<-w.done
}

func (w *Worker) tick() {
	if _, _, err := w.RunOnce(w.ctx); err != nil {
		w.logger.Errorf("Health sweep failed: %v", err)
	}
}

// RunOnce sweeps every upstream and the system checks, then stores both results
func (w *Worker) RunOnce(ctx context.Context) ([]UpstreamResult, SystemReport, error) {
	report := w.monitor.CheckSystem(ctx)
	w.store(ctx, cache.KeySystemHealth, report)
	if !report.Healthy {
		w.logger.WithFields(logrus.Fields{"proxy": report.Proxy.String(), "store": report.Store.String()}).Warn("System check failing")
	}

	ups, err := w.lister.Upstreams(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("failed to list upstreams: %w", err)
	}

	results := w.monitor.CheckAll(ctx, ups)
	w.store(ctx, cache.KeyUpstreamHealth, results)

	unhealthy := 0
	for _, r := range results {
		if r.Status.State == StateUnhealthy {
			unhealthy++
			w.logger.WithFields(logrus.Fields{
				"upstream_id": r.UpstreamID,
				"server":      r.Server,
				"reason":      r.Status.Reason,
			}).Warn("Upstream unhealthy")
		}
	}
	w.logger.Debugf("Health sweep finished: %d upstreams, %d unhealthy", len(results), unhealthy)
	return results, report, nil
}

func (w *Worker) store(ctx context.Context, key string, v any) {
	if w.results == nil {
		return
	}
	if err := w.results.Put(ctx, key, v); err != nil {
		w.logger.Errorf("Failed to store %s: %v", key, err)
	}
}
