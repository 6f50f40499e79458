package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"go_ngxmgr/internal/composer"
	"go_ngxmgr/internal/metrics"
	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/nginx"
	"go_ngxmgr/internal/store"
)

// SnapshotLoader reads the entities a composition needs
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*store.Snapshot, error)
}

// CandidateValidator checks candidate text with nginx
type CandidateValidator interface {
	Validate(ctx context.Context, candidate string) error
}

// LiveWriter replaces the live configuration file
type LiveWriter interface {
	Activate(content string) error
}

// ProcessReloader tells the running proxy to pick up the live file
type ProcessReloader interface {
	Reload(ctx context.Context) error
}

// CertificateWriter materializes the files a rendered server points at
type CertificateWriter interface {
	Persist(c *model.Certificate) error
}

// ErrStore marks failures reading the entity store
var ErrStore = errors.New("entity store failure")

// ReloadError is returned by Apply when the new file is live but the reload failed.
// The activated file is not rolled back.
type ReloadError struct {
	Err error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("configuration activated but reload failed: %v", e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

// ApplyResult describes one apply run
type ApplyResult struct {
	Bytes     int  `json:"bytes"`
	Activated bool `json:"activated"`
	Reloaded  bool `json:"reloaded"`
}

// ConfigServiceConfig wires the configuration pipeline
type ConfigServiceConfig struct {
	Loader    SnapshotLoader
	Composer  *composer.Composer
	Validator CandidateValidator
	Activator LiveWriter
	Reloader  ProcessReloader   // nil skips the reload step
	Files     CertificateWriter // nil skips writing served certificates
	Lane      *nginx.Lane
	Metrics   *metrics.Collector
	Logger    *logrus.Logger
}

// ConfigService runs snapshot, compose, validate, activate and reload
type ConfigService struct {
	loader    SnapshotLoader
	composer  *composer.Composer
	validator CandidateValidator
	activator LiveWriter
	reloader  ProcessReloader
	files     CertificateWriter
	lane      *nginx.Lane
	metrics   *metrics.Collector
	logger    *logrus.Entry
}

// NewConfigService creates the pipeline. Validation and activation run on cfg.Lane.
func NewConfigService(cfg ConfigServiceConfig) *ConfigService {
	return &ConfigService{
		loader:    cfg.Loader,
		composer:  cfg.Composer,
		validator: cfg.Validator,
		activator: cfg.Activator,
		reloader:  cfg.Reloader,
		files:     cfg.Files,
		lane:      cfg.Lane,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.WithField("component", "config-service"),
	}
}

// Preview composes the candidate from a fresh snapshot without checking it
func (s *ConfigService) Preview(ctx context.Context) (string, error) {
	candidate, _, err := s.compose(ctx)
	return candidate, err
}

// PreviewServer renders the block of one server, active or not, from a fresh snapshot
func (s *ConfigService) PreviewServer(ctx context.Context, id uint64) (string, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	for i := range snap.Servers {
		if srv := &snap.Servers[i]; srv.ID == id {
			return s.composer.RenderServer(srv, srv.Domains, snap.Locations, snap.Upstreams, snap.Certificates)
		}
	}
	return "", fmt.Errorf("server %d: %w", id, store.ErrNotFound)
}

// Validate composes the candidate and runs it through nginx -t.
// The candidate is returned even when rejected.
func (s *ConfigService) Validate(ctx context.Context) (string, error) {
	candidate, served, err := s.compose(ctx)
	if err != nil {
		return "", err
	}

	err = s.lane.Submit(ctx, func() error {
		if err := s.writeCertificates(served); err != nil {
			return err
		}
		verr := s.validator.Validate(ctx, candidate)
		s.recordValidation(verr)
		return verr
	})
	return candidate, err
}

// Apply validates the candidate, swaps it in as the live file and reloads nginx.
// Nothing is activated unless validation passed. Once the job holds the lane the
// returned result matches what happened to the live file, even if ctx ends.
func (s *ConfigService) Apply(ctx context.Context) (*ApplyResult, error) {
	candidate, served, err := s.compose(ctx)
	if err != nil {
		return nil, err
	}

	var activated, reloaded bool
	err = s.lane.Submit(ctx, func() error {
		if err := s.writeCertificates(served); err != nil {
			return err
		}
		verr := s.validator.Validate(ctx, candidate)
		s.recordValidation(verr)
		if verr != nil {
			return verr
		}

		if err := s.activator.Activate(candidate); err != nil {
			s.metrics.RecordActivation("error")
			return fmt.Errorf("failed to activate configuration: %w", err)
		}
		activated = true

		if s.reloader == nil {
			s.metrics.RecordActivation("activated")
			return nil
		}
		// the file is live, so the reload must not be abandoned with the caller
		if err := s.reloader.Reload(context.WithoutCancel(ctx)); err != nil {
			s.metrics.RecordActivation("reload_failed")
			return &ReloadError{Err: err}
		}
		reloaded = true
		s.metrics.RecordActivation("activated")
		return nil
	})
	result := &ApplyResult{Bytes: len(candidate), Activated: activated, Reloaded: reloaded}

	var reloadErr *ReloadError
	switch {
	case err == nil:
		s.logger.WithField("bytes", result.Bytes).Info("Configuration applied")
	case errors.As(err, &reloadErr):
		s.logger.WithError(reloadErr.Err).Error("Configuration activated but reload failed")
	default:
		s.logger.WithError(err).Warn("Configuration not applied")
	}
	return result, err
}

func (s *ConfigService) load(ctx context.Context) (*store.Snapshot, error) {
	snap, err := s.loader.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load snapshot: %w", ErrStore, err)
	}
	return snap, nil
}

// compose renders the candidate and lists the certificates it references
func (s *ConfigService) compose(ctx context.Context) (string, []model.Certificate, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return "", nil, err
	}
	candidate, err := s.composer.Compose(snap)
	if err != nil {
		return "", nil, err
	}
	served, err := s.composer.ServedCertificates(snap)
	if err != nil {
		return "", nil, err
	}
	return candidate, served, nil
}

// writeCertificates persists the certificates of the candidate before nginx -t reads them
func (s *ConfigService) writeCertificates(served []model.Certificate) error {
	if s.files == nil {
		return nil
	}
	for i := range served {
		if err := s.files.Persist(&served[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConfigService) recordValidation(err error) {
	var rejected *nginx.RejectedError
	switch {
	case err == nil:
		s.metrics.RecordValidation("accepted")
	case errors.As(err, &rejected):
		s.metrics.RecordValidation("rejected")
	default:
		s.metrics.RecordValidation("error")
	}
}
