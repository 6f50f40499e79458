package composer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go_ngxmgr/internal/cert"
	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/validator"
)

type tlsData struct {
	CertPath string
	KeyPath  string
}

type serverData struct {
	Port             uint32
	HTTP2            bool
	ServerNames      string
	AccessLog        string
	ErrorLog         string
	LogLevel         string
	TLS              *tlsData
	AdditionalConfig string
	Locations        []string
}

type locationData struct {
	Path              string
	UpstreamName      string
	ClientMaxBodySize string
	AdditionalConfig  string
}

// RenderServer renders one server block with its locations nested in ascending id order.
// domains are the hostnames of the server; locations of other servers are ignored.
func (c *Composer) RenderServer(
	server *model.HttpServer,
	domains []model.Domain,
	locations []model.Location,
	upstreams []model.Upstream,
	certificates []model.Certificate,
) (string, error) {
	if server.ListeningPort == nil {
		return "", &CompositionError{Entity: "server", ID: server.ID, Reason: fmt.Sprintf("listening port %d not loaded", server.ListeningPortID)}
	}
	if err := validator.ValidatePort(uint64(server.ListeningPort.Port)); err != nil {
		return "", &CompositionError{Entity: "server", ID: server.ID, Reason: "bad listening port", Err: err}
	}

	names, err := domainNames(domains)
	if err != nil {
		return "", err
	}
	data := serverData{
		Port:             server.ListeningPort.Port,
		HTTP2:            server.ListeningPort.HTTP2,
		ServerNames:      serverNames(server, names),
		AccessLog:        orDefault(server.AccessLogPath, DefaultLogPath),
		ErrorLog:         orDefault(server.ErrorLogPath, DefaultLogPath),
		LogLevel:         orDefault(server.LogLevel, DefaultLogLevel),
		AdditionalConfig: blob(server.AdditionalConfig),
	}

	if match := matchCertificate(server, names, certificates, c.opts.Now()); match != nil {
		data.TLS = &tlsData{
			CertPath: cert.CertPath(c.opts.CertDir, match.Name),
			KeyPath:  cert.KeyPath(c.opts.CertDir, match.Name),
		}
	}

	upstreamByID := make(map[uint64]*model.Upstream, len(upstreams))
	for i := range upstreams {
		upstreamByID[upstreams[i].ID] = &upstreams[i]
	}

	for _, loc := range serverLocations(server.ID, locations) {
		up, ok := upstreamByID[loc.UpstreamID]
		if !ok {
			return "", &CompositionError{
				Entity: "location",
				ID:     loc.ID,
				Reason: fmt.Sprintf("references unknown upstream %d", loc.UpstreamID),
			}
		}
		block, err := c.execute("location.tmpl", locationData{
			Path:              orDefault(loc.Path, "/"),
			UpstreamName:      up.Name,
			ClientMaxBodySize: strings.TrimSpace(loc.ClientMaxBodySize),
			AdditionalConfig:  blob(loc.AdditionalConfig),
		})
		if err != nil {
			return "", &CompositionError{Entity: "location", ID: loc.ID, Reason: "template", Err: err}
		}
		data.Locations = append(data.Locations, block)
	}

	out, err := c.execute("server.tmpl", data)
	if err != nil {
		return "", &CompositionError{Entity: "server", ID: server.ID, Reason: "template", Err: err}
	}
	return out, nil
}

// serverLocations returns the locations of one server sorted by id
func serverLocations(serverID uint64, locations []model.Location) []model.Location {
	var out []model.Location
	for _, loc := range locations {
		if loc.ServerID == serverID {
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// matchCertificate picks the certificate served by a server.
// A directly assigned certificate wins when eligible. Otherwise, on an ssl
// port, the lowest-id eligible certificate covering one of the domains is used.
func matchCertificate(server *model.HttpServer, domains []string, certificates []model.Certificate, now time.Time) *model.Certificate {
	sorted := make([]*model.Certificate, 0, len(certificates))
	for i := range certificates {
		sorted = append(sorted, &certificates[i])
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if direct := model.IDVal(server.CertificateID); direct != 0 {
		for _, c := range sorted {
			if c.ID == direct && cert.Eligible(c, now) {
				return c
			}
		}
	}

	if !server.ListeningPort.SSL || len(domains) == 0 {
		return nil
	}
	for _, c := range sorted {
		if cert.Covers(c, domains) && cert.Eligible(c, now) {
			return c
		}
	}
	return nil
}

// domainNames returns the hostnames in ascending domain id order.
// Every hostname must pass validator.ValidateDomain.
func domainNames(domains []model.Domain) ([]string, error) {
	sorted := make([]model.Domain, len(domains))
	copy(sorted, domains)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	names := make([]string, 0, len(sorted))
	for _, d := range sorted {
		if err := validator.ValidateDomain(d.Domain); err != nil {
			return nil, &CompositionError{Entity: "domain", ID: d.ID, Reason: fmt.Sprintf("bad hostname %q", d.Domain), Err: err}
		}
		names = append(names, d.Domain)
	}
	return names, nil
}

// serverNames joins the domains, falling back to the server name, then to nginx's catch-all
func serverNames(server *model.HttpServer, names []string) string {
	if len(names) > 0 {
		return strings.Join(names, " ")
	}
	if server.Name != "" {
		return server.Name
	}
	return "_"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
