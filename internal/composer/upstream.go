package composer

import (
	"go_ngxmgr/internal/model"
	"go_ngxmgr/internal/validator"
)

type upstreamData struct {
	Name            string
	Server          string
	KeepAlive       uint64
	MaxFails        uint64
	Interval        uint64
	HealthCheckPath string
}

// RenderUpstream renders one upstream block. The endpoint is emitted exactly as stored.
func (c *Composer) RenderUpstream(up *model.Upstream) (string, error) {
	if _, err := validator.ParseEndpoint(up.Server); err != nil {
		return "", &CompositionError{Entity: "upstream", ID: up.ID, Reason: "server is not host:port", Err: err}
	}
	if up.Name == "" {
		return "", &CompositionError{Entity: "upstream", ID: up.ID, Reason: "name is empty"}
	}

	out, err := c.execute("upstream.tmpl", upstreamData{
		Name:            up.Name,
		Server:          up.Server,
		KeepAlive:       up.KeepAlive,
		MaxFails:        up.MaxFails,
		Interval:        up.HealthCheckInterval,
		HealthCheckPath: up.HealthCheckPath,
	})
	if err != nil {
		return "", &CompositionError{Entity: "upstream", ID: up.ID, Reason: "template", Err: err}
	}
	return out, nil
}
