package cert

import (
	"fmt"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
)

// expiryTolerance absorbs sub-minute rounding between the stored expiry and the PEM body
const expiryTolerance = time.Minute

// Details is what the leaf certificate itself says
type Details struct {
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	DNSNames  []string  `json:"dns_names"`
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
}

// Inspect parses the first certificate of a PEM bundle
func Inspect(certPEM string) (*Details, error) {
	x509Cert, err := certcrypto.ParsePEMCertificate([]byte(certPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &Details{
		Subject:   x509Cert.Subject.CommonName,
		Issuer:    x509Cert.Issuer.CommonName,
		DNSNames:  x509Cert.DNSNames,
		NotBefore: x509Cert.NotBefore.UTC(),
		NotAfter:  x509Cert.NotAfter.UTC(),
	}, nil
}

// ExpiryMismatch reports whether the stored expiry disagrees with NotAfter
func ExpiryMismatch(storedExpiry time.Time, d *Details) bool {
	diff := storedExpiry.Sub(d.NotAfter)
	if diff < 0 {
		diff = -diff
	}
	return diff > expiryTolerance
}
