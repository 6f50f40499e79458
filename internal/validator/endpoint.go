package validator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Error is a structural validation failure of a single field
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// Endpoint is a parsed host:port pair
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return e.Host + ":" + strconv.Itoa(int(e.Port))
}

// ParseEndpoint splits an upstream server string on its last colon.
// Rules:
//   - host must not be empty
//   - a host made of digits and dots must be a valid IPv4 address
//   - port must be numeric and within 1-65535
func ParseEndpoint(server string) (Endpoint, error) {
	if server == "" {
		return Endpoint{}, invalid("server", "must not be empty")
	}

	idx := strings.LastIndex(server, ":")
	if idx < 0 {
		return Endpoint{}, invalid("server", "missing :port suffix")
	}

	host, portStr := server[:idx], server[idx+1:]
	if host == "" {
		return Endpoint{}, invalid("server", "host must not be empty")
	}
	if looksNumeric(host) {
		if err := ValidateIPv4(host); err != nil {
			return Endpoint{}, err
		}
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Endpoint{}, invalid("server", fmt.Sprintf("port %q is not a number in range", portStr))
	}
	if err := ValidatePort(port); err != nil {
		return Endpoint{}, err
	}

	return Endpoint{Host: host, Port: uint16(port)}, nil
}

func looksNumeric(host string) bool {
	for _, c := range host {
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// ValidatePort checks that a port lies in 1-65535
func ValidatePort(port uint64) error {
	if port == 0 || port > 65535 {
		return invalid("port", fmt.Sprintf("%d is outside 1-65535", port))
	}
	return nil
}

// ValidateDomain checks a hostname: non-empty, at least one dot,
// only letters, digits, '.' and '-'
func ValidateDomain(domain string) error {
	if domain == "" {
		return invalid("domain", "must not be empty")
	}
	if !strings.Contains(domain, ".") {
		return invalid("domain", "must contain at least one '.'")
	}
	for _, c := range domain {
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '.' || c == '-') {
			return invalid("domain", fmt.Sprintf("illegal character %q", c))
		}
	}
	return nil
}

// ValidateIPv4 checks a dotted-quad address
func ValidateIPv4(ip string) error {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return invalid("ip", "must have four octets")
	}
	for _, part := range parts {
		if _, err := strconv.ParseUint(part, 10, 8); err != nil {
			return invalid("ip", fmt.Sprintf("octet %q out of range", part))
		}
	}
	return nil
}
