package store

import (
	"context"
	"fmt"

	"go_ngxmgr/internal/model"
)

// Snapshot is every entity needed to compose a configuration, read just before rendering
type Snapshot struct {
	Servers      []model.HttpServer
	Upstreams    []model.Upstream
	Locations    []model.Location
	Certificates []model.Certificate
}

// LoadSnapshot reads all servers, upstreams, locations and certificates.
// Each list is ordered by ascending id. No transaction is used.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	servers, err := List[model.HttpServer](ctx, s, "ListeningPort", "Domains")
	if err != nil {
		return nil, fmt.Errorf("servers: %w", err)
	}
	upstreams, err := List[model.Upstream](ctx, s)
	if err != nil {
		return nil, fmt.Errorf("upstreams: %w", err)
	}
	locations, err := List[model.Location](ctx, s)
	if err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	certificates, err := List[model.Certificate](ctx, s, "Domains")
	if err != nil {
		return nil, fmt.Errorf("certificates: %w", err)
	}

	return &Snapshot{
		Servers:      servers,
		Upstreams:    upstreams,
		Locations:    locations,
		Certificates: certificates,
	}, nil
}

// Upstreams lists upstreams for the health worker
func (s *Store) Upstreams(ctx context.Context) ([]model.Upstream, error) {
	return List[model.Upstream](ctx, s)
}

// Certificates lists certificates with their domains for the scanner
func (s *Store) Certificates(ctx context.Context) ([]model.Certificate, error) {
	return List[model.Certificate](ctx, s, "Domains")
}

// Certificate fetches one certificate with its domains
func (s *Store) Certificate(ctx context.Context, id uint64) (*model.Certificate, error) {
	return FetchByID[model.Certificate](ctx, s, id, "Domains")
}
