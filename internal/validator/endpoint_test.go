package validator

import (
	"errors"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		server   string
		wantHost string
		wantPort uint16
		wantErr  bool
	}{
		{name: "ipv4 with port", server: "10.0.0.5:8080", wantHost: "10.0.0.5", wantPort: 8080},
		{name: "hostname with port", server: "backend.internal:80", wantHost: "backend.internal", wantPort: 80},
		{name: "bracketed ipv6", server: "[::1]:9000", wantHost: "[::1]", wantPort: 9000},
		{name: "max port", server: "h:65535", wantHost: "h", wantPort: 65535},
		{name: "empty", server: "", wantErr: true},
		{name: "missing port", server: "10.0.0.5", wantErr: true},
		{name: "empty host", server: ":8080", wantErr: true},
		{name: "non numeric port", server: "10.0.0.5:http", wantErr: true},
		{name: "port zero", server: "10.0.0.5:0", wantErr: true},
		{name: "port too large", server: "10.0.0.5:70000", wantErr: true},
		{name: "empty port", server: "10.0.0.5:", wantErr: true},
		{name: "octet out of range", server: "10.0.0.300:80", wantErr: true},
		{name: "three octets", server: "10.0.5:80", wantErr: true},
		{name: "numeric label hostname", server: "10.0.0.5.internal:80", wantHost: "10.0.0.5.internal", wantPort: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEndpoint(tt.server)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseEndpoint(%q) expected error, got %+v", tt.server, got)
				}
				var verr *Error
				if !errors.As(err, &verr) {
					t.Errorf("expected *Error, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEndpoint(%q) unexpected error: %v", tt.server, err)
			}
			if got.Host != tt.wantHost || got.Port != tt.wantPort {
				t.Errorf("ParseEndpoint(%q) = %s:%d, want %s:%d", tt.server, got.Host, got.Port, tt.wantHost, tt.wantPort)
			}
			if got.String() != tt.server {
				t.Errorf("String() = %q, want %q", got.String(), tt.server)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		domain  string
		wantErr bool
	}{
		{"example.com", false},
		{"a-b.example.co", false},
		{"xn--bcher-kva.example", false},
		{"", true},
		{"localhost", true},
		{"exa_mple.com", true},
		{"example.com/path", true},
		{"*.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			err := ValidateDomain(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomain(%q) error = %v, wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	for _, p := range []uint64{1, 80, 443, 65535} {
		if err := ValidatePort(p); err != nil {
			t.Errorf("ValidatePort(%d) unexpected error: %v", p, err)
		}
	}
	for _, p := range []uint64{0, 65536, 100000} {
		if err := ValidatePort(p); err == nil {
			t.Errorf("ValidatePort(%d) expected error", p)
		}
	}
}

func TestValidateIPv4(t *testing.T) {
	tests := []struct {
		ip      string
		wantErr bool
	}{
		{"192.168.1.1", false},
		{"0.0.0.0", false},
		{"255.255.255.255", false},
		{"256.1.1.1", true},
		{"1.2.3", true},
		{"a.b.c.d", true},
	}
	for _, tt := range tests {
		if err := ValidateIPv4(tt.ip); (err != nil) != tt.wantErr {
			t.Errorf("ValidateIPv4(%q) error = %v, wantErr %v", tt.ip, err, tt.wantErr)
		}
	}
}
