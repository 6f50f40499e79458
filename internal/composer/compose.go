package composer

import (
	"sort"

	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/store"
)

type mainData struct {
	Options
	Upstreams []string
	Servers   []string
}

// RenderMain wraps rendered upstream and server blocks, in the given order,
// into a complete nginx.conf preceded by the global directives
func (c *Composer) RenderMain(upstreams, servers []string) (string, error) {
	return c.execute("main.tmpl", mainData{
		Options:   c.opts,
		Upstreams: upstreams,
		Servers:   servers,
	})
}

// Compose renders the whole artifact from a snapshot.
// Active servers are rendered in ascending id order. Upstreams are rendered
// when active or referenced by a location of a rendered server.
func (c *Composer) Compose(snap *store.Snapshot) (string, error) {
	servers := make([]*model.HttpServer, 0, len(snap.Servers))
	for i := range snap.Servers {
		if snap.Servers[i].IsActive() {
			servers = append(servers, &snap.Servers[i])
		}
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].ID < servers[j].ID })

	rendered := make(map[uint64]bool, len(servers))
	serverBlocks := make([]string, 0, len(servers))
	for _, s := range servers {
		block, err := c.RenderServer(s, s.Domains, snap.Locations, snap.Upstreams, snap.Certificates)
		if err != nil {
			return "", err
		}
		serverBlocks = append(serverBlocks, block)
		rendered[s.ID] = true
	}

	referenced := make(map[uint64]bool)
	for _, loc := range snap.Locations {
		if rendered[loc.ServerID] {
			referenced[loc.UpstreamID] = true
		}
	}

	upstreams := make([]*model.Upstream, 0, len(snap.Upstreams))
	for i := range snap.Upstreams {
		up := &snap.Upstreams[i]
		if up.IsActive() || referenced[up.ID] {
			upstreams = append(upstreams, up)
		}
	}
	sort.Slice(upstreams, func(i, j int) bool { return upstreams[i].ID < upstreams[j].ID })

	upstreamBlocks := make([]string, 0, len(upstreams))
	for _, up := range upstreams {
		block, err := c.RenderUpstream(up)
		if err != nil {
			return "", err
		}
		upstreamBlocks = append(upstreamBlocks, block)
	}

	return c.RenderMain(upstreamBlocks, serverBlocks)
}

// ServedCertificates returns the certificates referenced by the TLS directives
// of the active servers in snap, once each, in ascending id order
func (c *Composer) ServedCertificates(snap *store.Snapshot) ([]model.Certificate, error) {
	now := c.opts.Now()
	seen := make(map[uint64]bool)
	var out []model.Certificate
	for i := range snap.Servers {
		s := &snap.Servers[i]
		if !s.IsActive() || s.ListeningPort == nil {
			continue
		}
		names, err := domainNames(s.Domains)
		if err != nil {
			return nil, err
		}
		if match := matchCertificate(s, names, snap.Certificates, now); match != nil && !seen[match.ID] {
			seen[match.ID] = true
			out = append(out, *match)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
