package composer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Defaults applied by New for zero-valued options
const (
	DefaultWorkerProcesses   = "auto"
	DefaultWorkerConnections = 1024
	DefaultMimeTypesPath     = "/etc/nginx/mime.types"
	DefaultPidPath           = "/run/nginx.pid"
	DefaultErrorLogPath      = "/var/log/nginx/error.log"
	DefaultCertDir           = "/etc/nginx/certs"

	// per-server fallbacks
	DefaultLogPath  = "/dev/null"
	DefaultLogLevel = "warn"
)

// Options holds the process-wide rendering settings
type Options struct {
	CertDir           string
	WorkerProcesses   string
	WorkerConnections int
	MimeTypesPath     string
	PidPath           string
	ErrorLogPath      string
	Now               func() time.Time
}

// Composer renders entities into nginx configuration text.
// It is immutable after New and safe for concurrent use.
type Composer struct {
	opts      Options
	templates *template.Template
}

// CompositionError reports an entity that cannot be rendered
type CompositionError struct {
	Entity string
	ID     uint64
	Reason string
	Err    error
}

func (e *CompositionError) Error() string {
	msg := fmt.Sprintf("cannot compose %s %d: %s", e.Entity, e.ID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// New parses the embedded templates once
func New(opts Options) (*Composer, error) {
	if opts.CertDir == "" {
		opts.CertDir = DefaultCertDir
	}
	if opts.WorkerProcesses == "" {
		opts.WorkerProcesses = DefaultWorkerProcesses
	}
	if opts.WorkerConnections <= 0 {
		opts.WorkerConnections = DefaultWorkerConnections
	}
	if opts.MimeTypesPath == "" {
		opts.MimeTypesPath = DefaultMimeTypesPath
	}
	if opts.PidPath == "" {
		opts.PidPath = DefaultPidPath
	}
	if opts.ErrorLogPath == "" {
		opts.ErrorLogPath = DefaultErrorLogPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tmpl, err := template.New("nginx").
		Funcs(template.FuncMap{"indent": indent}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Composer{opts: opts, templates: tmpl}, nil
}

// Options returns the effective options after defaults
func (c *Composer) Options() Options {
	return c.opts
}

func (c *Composer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// indent prefixes every non-empty line with n spaces and drops trailing newlines.
// Line content, whitespace-only lines included, is otherwise kept byte for byte.
func indent(n int, text string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(text, "\r\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// blob returns text, or "" when it holds only whitespace
func blob(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
