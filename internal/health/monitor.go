package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go_ngxmgr/internal/metrics"
	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/nginx"
)

// Defaults for Config zero values
const (
	DefaultProbeTimeout  = 5 * time.Second
	DefaultClientTimeout = 10 * time.Second
	DefaultConcurrency   = 10
)

const drainLimit = 64 * 1024

// Pinger is the store connectivity dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the configuration for the monitor
type Config struct {
	ProbeTimeout  time.Duration
	ClientTimeout time.Duration
	Concurrency   int
	Transport     http.RoundTripper
}

// Monitor classifies upstream, proxy and store health
type Monitor struct {
	client       *http.Client
	tester       nginx.Tester
	pinger       Pinger
	metrics      *metrics.Collector
	probeTimeout time.Duration
	concurrency  int
}

// NewMonitor creates a monitor. tester, pinger and collector may be nil;
// the matching checks then report unhealthy or record nothing.
func NewMonitor(tester nginx.Tester, pinger Pinger, collector *metrics.Collector, cfg Config) *Monitor {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = DefaultClientTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Monitor{
		client:       &http.Client{Timeout: cfg.ClientTimeout, Transport: cfg.Transport},
		tester:       tester,
		pinger:       pinger,
		metrics:      collector,
		probeTimeout: cfg.ProbeTimeout,
		concurrency:  cfg.Concurrency,
	}
}

// ProbeURL is http://<server><path>
func ProbeURL(up *model.Upstream) string {
	path := up.HealthCheckPath
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + up.Server + path
}

// CheckUpstream probes one upstream. Inactive upstreams are not contacted.
func (m *Monitor) CheckUpstream(ctx context.Context, up *model.Upstream) Status {
	if !up.IsActive() {
		return Inactive()
	}

	start := time.Now()
	status := m.probe(ctx, up)
	m.metrics.RecordProbe(up.Name, string(status.State), status.IsHealthy(), time.Since(start))
	return status
}

func (m *Monitor) probe(ctx context.Context, up *model.Upstream) Status {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ProbeURL(up), nil)
	if err != nil {
		return Unhealthy(fmt.Sprintf("failed to create request: %v", err))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Unhealthy("Timeout")
		}
		return Unhealthy(err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Unhealthy("HTTP " + resp.Status)
	}
	return Healthy()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// CheckProxyProcess runs the syntax check against the active configuration
func (m *Monitor) CheckProxyProcess(ctx context.Context) Status {
	if m.tester == nil {
		return Unhealthy("nginx tester not configured")
	}

	output, err := m.tester.Test(ctx, "")
	if err == nil {
		return Healthy()
	}
	if errors.Is(err, nginx.ErrBinaryNotFound) {
		return Unhealthy(err.Error())
	}
	if out := strings.TrimSpace(output); out != "" {
		return Unhealthy(out)
	}
	return Unhealthy(err.Error())
}

// CheckStoreConnectivity issues a no-op query
func (m *Monitor) CheckStoreConnectivity(ctx context.Context) Status {
	if m.pinger == nil {
		return Unhealthy("store not configured")
	}
	if err := m.pinger.Ping(ctx); err != nil {
		return Unhealthy(err.Error())
	}
	return Healthy()
}
