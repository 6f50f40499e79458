package cert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"go_ngxmgr/internal/cache"
	"go_ngxmgr/internal/metrics"
	"go_ngxmgr/internal/model"
)

// DefaultSchedule runs the scanner hourly
const DefaultSchedule = "@every 1h"

// Lister is the store dependency of the scanner
type Lister interface {
	Certificates(ctx context.Context) ([]model.Certificate, error)
}

// ReportStore keeps the most recent scan result
type ReportStore interface {
	Put(ctx context.Context, key string, v any) error
}

// Report is the scanner's view of one certificate
type Report struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Status         Status    `json:"status"`
	ExpiredAt      time.Time `json:"expired_at"`
	ShouldRenew    bool      `json:"should_renew"`
	Persisted      bool      `json:"persisted"`
	ExpiryMismatch bool      `json:"expiry_mismatch"`
	Error          string    `json:"error,omitempty"`
}

// ScannerConfig holds configuration for the certificate scanner
type ScannerConfig struct {
	Schedule        string
	CertDir         string
	RenewBeforeDays int
	Now             func() time.Time
}

// Scanner periodically classifies every certificate and materializes the usable ones
type Scanner struct {
	lister  Lister
	reports ReportStore
	metrics *metrics.Collector
	config  ScannerConfig
	logger  *logrus.Entry

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScanner creates a scanner. reports and collector may be nil.
func NewScanner(lister Lister, reports ReportStore, collector *metrics.Collector, config ScannerConfig, logger *logrus.Logger) *Scanner {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	if config.RenewBeforeDays <= 0 {
		config.RenewBeforeDays = ExpiringWindowDays
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Scanner{
		lister:  lister,
		reports: reports,
		metrics: collector,
		config:  config,
		logger:  logger.WithField("component", "cert-scanner"),
		cron:    cron.New(),
	}
}

// Scan runs one pass over all certificates
func (s *Scanner) Scan(ctx context.Context) ([]Report, error) {
	certs, err := s.lister.Certificates(ctx)
	if err != nil {
		s.metrics.RecordScan("error")
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	now := s.config.Now().UTC()
	reports := make([]Report, 0, len(certs))
	for i := range certs {
		reports = append(reports, s.scanOne(&certs[i], now))
	}

	if s.reports != nil {
		if err := s.reports.Put(ctx, cache.KeyCertificateReports, reports); err != nil {
			s.logger.WithError(err).Warn("Failed to cache certificate reports")
		}
	}
	s.metrics.RecordScan("ok")
	return reports, nil
}

// Evaluate classifies c and checks it without touching the filesystem
func Evaluate(c *model.Certificate, now time.Time, renewBeforeDays int) Report {
	status := Classify(c, now)
	r := Report{
		ID:          c.ID,
		Name:        c.Name,
		Status:      status,
		ExpiredAt:   c.ExpiredAt,
		ShouldRenew: ShouldRenewWithin(c, now, renewBeforeDays),
	}
	if details, err := Inspect(c.Certificate); err == nil {
		r.ExpiryMismatch = ExpiryMismatch(c.ExpiredAt, details)
	}
	if err := ValidateCertificate(c.Certificate, c.PrivateKey); err != nil {
		r.Error = err.Error()
	}
	return r
}

func (s *Scanner) scanOne(c *model.Certificate, now time.Time) Report {
	r := Evaluate(c, now, s.config.RenewBeforeDays)
	log := s.logger.WithFields(logrus.Fields{"certificate_id": c.ID, "name": c.Name})

	if r.ExpiryMismatch {
		log.WithField("expired_at", c.ExpiredAt).Warn("Stored expiry differs from certificate body")
	}

	switch {
	case r.Error != "":
		log.WithField("reason", r.Error).Warn("Certificate is not usable")
	case r.Status.IsExpired():
		log.Warn("Certificate expired")
	case s.config.CertDir != "":
		if err := Persist(c, s.config.CertDir); err != nil {
			r.Error = err.Error()
			log.WithError(err).Error("Failed to persist certificate")
		} else {
			r.Persisted = true
		}
	}

	if r.ShouldRenew {
		log.WithField("days_remaining", r.Status.DaysRemaining).Info("Certificate due for renewal")
	}
	s.metrics.RecordCertificate(c.Name, r.Status.DaysRemaining, r.ShouldRenew)
	return r
}

// Start schedules Scan on the configured cron expression and stops when ctx is done
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.Scan(ctx); err != nil {
			s.logger.WithError(err).Error("Certificate scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule certificate scan: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.WithField("schedule", s.config.Schedule).Info("Certificate scanner started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the schedule and waits for a running scan to finish
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Certificate scanner stopped")
}
