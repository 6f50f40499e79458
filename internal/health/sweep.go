package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go_ngxmgr/internal/model"
)

// UpstreamResult is the outcome of probing one upstream
type UpstreamResult struct {
	UpstreamID uint64    `json:"upstream_id"`
	Name       string    `json:"name"`
	Server     string    `json:"server"`
	Status     Status    `json:"status"`
	CheckedAt  time.Time `json:"checked_at"`
}

// SystemReport combines the proxy and store checks
type SystemReport struct {
	Healthy   bool      `json:"healthy"`
	Proxy     Status    `json:"proxy"`
	Store     Status    `json:"store"`
	CheckedAt time.Time `json:"checked_at"`
}

// CheckAll probes upstreams concurrently, at most Concurrency at a time.
// Results keep the input order; a slow upstream only delays its own slot.
func (m *Monitor) CheckAll(ctx context.Context, ups []model.Upstream) []UpstreamResult {
	results := make([]UpstreamResult, len(ups))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, m.concurrency)

	for i := range ups {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			up := &ups[i]
			results[i] = UpstreamResult{
				UpstreamID: up.ID,
				Name:       up.Name,
				Server:     up.Server,
				Status:     m.CheckUpstream(ctx, up),
				CheckedAt:  time.Now().UTC(),
			}
		}(i)
	}

	wg.Wait()
	return results
}

// CheckSystem runs the proxy and store checks concurrently. Neither check can
// prevent the other from completing.
func (m *Monitor) CheckSystem(ctx context.Context) SystemReport {
	var report SystemReport
	var g errgroup.Group

	g.Go(func() error {
		report.Proxy = m.CheckProxyProcess(ctx)
		return nil
	})
	g.Go(func() error {
		report.Store = m.CheckStoreConnectivity(ctx)
		return nil
	})
	g.Wait()

	report.Healthy = report.Proxy.IsHealthy() && report.Store.IsHealthy()
	report.CheckedAt = time.Now().UTC()
	return report
}
