package cert

import (
	"strings"

	"go_ngxmgr/internal/model"
)

// DomainNames returns the hostnames attached to a certificate
func DomainNames(c *model.Certificate) []string {
	names := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		names = append(names, d.Domain)
	}
	return names
}

// Covers reports whether the certificate serves at least one of the given
// server domains, either exactly or through a wildcard entry
func Covers(c *model.Certificate, serverDomains []string) bool {
	certDomains := DomainNames(c)
	for _, sd := range serverDomains {
		if IsCoveredBy(sd, certDomains) {
			return true
		}
	}
	return false
}

// IsCoveredBy checks if a target domain is covered by any of the certificate domains
func IsCoveredBy(targetDomain string, certDomains []string) bool {
	for _, certDomain := range certDomains {
		if MatchDomain(certDomain, targetDomain) {
			return true
		}
	}
	return false
}

// MatchDomain checks exact or wildcard match, case-insensitively
func MatchDomain(certDomain, targetDomain string) bool {
	certDomain = strings.ToLower(certDomain)
	targetDomain = strings.ToLower(targetDomain)

	if certDomain == targetDomain {
		return true
	}
	if strings.HasPrefix(certDomain, "*.") {
		return MatchWildcard(certDomain, targetDomain)
	}
	return false
}

// MatchWildcard checks if a wildcard domain matches a target domain
// Rules:
// - *.example.com matches a.example.com, b.example.com
// - *.example.com does NOT match example.com (apex domain)
// - *.example.com does NOT match a.b.example.com (second-level subdomain)
func MatchWildcard(wildcardDomain, targetDomain string) bool {
	base := strings.TrimPrefix(wildcardDomain, "*.")

	prefix, ok := strings.CutSuffix(targetDomain, "."+base)
	if !ok || prefix == "" {
		return false
	}
	return !strings.Contains(prefix, ".")
}
