package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go_ngxmgr/internal/cert"
	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/store"
)

// CertificateSource reads certificates from the store
type CertificateSource interface {
	Certificates(ctx context.Context) ([]model.Certificate, error)
	Certificate(ctx context.Context, id uint64) (*model.Certificate, error)
}

// CertificateService reports certificate state and materializes certificate files
type CertificateService struct {
	source          CertificateSource
	certDir         string
	renewBeforeDays int
	now             func() time.Time
	logger          *logrus.Entry
}

// NewCertificateService creates the service. now may be nil.
func NewCertificateService(source CertificateSource, certDir string, renewBeforeDays int, now func() time.Time, logger *logrus.Logger) *CertificateService {
	if renewBeforeDays <= 0 {
		renewBeforeDays = cert.ExpiringWindowDays
	}
	if now == nil {
		now = time.Now
	}
	return &CertificateService{
		source:          source,
		certDir:         certDir,
		renewBeforeDays: renewBeforeDays,
		now:             now,
		logger:          logger.WithField("component", "certificate-service"),
	}
}

// Status classifies every certificate at the current time
func (s *CertificateService) Status(ctx context.Context) ([]cert.Report, error) {
	certs, err := s.source.Certificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list certificates: %w", ErrStore, err)
	}
	now := s.now().UTC()
	reports := make([]cert.Report, 0, len(certs))
	for i := range certs {
		reports = append(reports, cert.Evaluate(&certs[i], now, s.renewBeforeDays))
	}
	return reports, nil
}

// Remove deletes the persisted files of one certificate. The entity itself is kept.
func (s *CertificateService) Remove(ctx context.Context, id uint64) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := cert.Remove(c, s.certDir); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"certificate_id": c.ID, "name": c.Name, "dir": s.certDir}).Info("Certificate files removed")
	return nil
}

func (s *CertificateService) load(ctx context.Context, id uint64) (*model.Certificate, error) {
	c, err := s.source.Certificate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load certificate %d: %w", ErrStore, id, err)
	}
	return c, nil
}

// Persist writes the files of one certificate into the certificate directory.
// Errors are store.ErrNotFound, *cert.ValidationError or *cert.PersistError.
func (s *CertificateService) Persist(ctx context.Context, id uint64) (*cert.Report, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cert.ValidateCertificate(c.Certificate, c.PrivateKey); err != nil {
		return nil, err
	}
	if err := cert.Persist(c, s.certDir); err != nil {
		return nil, err
	}

	r := cert.Evaluate(c, s.now().UTC(), s.renewBeforeDays)
	r.Persisted = true
	s.logger.WithFields(logrus.Fields{"certificate_id": c.ID, "name": c.Name, "dir": s.certDir}).Info("Certificate persisted")
	return &r, nil
}
