package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL        MySQLConfig
	Redis        RedisConfig
	Migrate      bool
	HTTPAddr     string
	Nginx        NginxConfig
	HealthWorker HealthWorkerConfig
	CertScanner  CertScannerConfig
	Log          LogConfig
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTLSec   int
}

// NginxConfig holds paths and commands for the managed nginx
type NginxConfig struct {
	Bin               string // Default: nginx
	ConfPath          string // Default: /etc/nginx/nginx.conf
	StagingDir        string // Default: /var/lib/ngxmgr/staging
	ReloadCmd         string // Default: nginx -s reload
	CertDir           string // Default: /etc/nginx/certs
	WorkerProcesses   string
	WorkerConnections int
	PidPath           string
	ErrorLogPath      string
	MimeTypesPath     string
}

// HealthWorkerConfig holds upstream health worker configuration
type HealthWorkerConfig struct {
	Enabled          bool
	IntervalSec      int
	ProbeTimeoutSec  int
	ClientTimeoutSec int
	Concurrency      int
}

// CertScannerConfig holds certificate scanner configuration
type CertScannerConfig struct {
	Enabled         bool
	Schedule        string
	RenewBeforeDays int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Interval returns the sweep interval
func (c HealthWorkerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// ProbeTimeout returns the per-probe timeout
func (c HealthWorkerConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// ClientTimeout returns the overall HTTP client timeout
func (c HealthWorkerConfig) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutSec) * time.Second
}

// TTL returns how long cached values live (0 = until replaced)
func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// lookup resolves one setting; ENV first, then the optional INI file
type lookup struct {
	file *ini.File
}

func (l lookup) raw(envKey, section, key string) (string, bool) {
	if value := os.Getenv(envKey); value != "" {
		return value, true
	}
	if l.file != nil && l.file.Section(section).HasKey(key) {
		if value := l.file.Section(section).Key(key).String(); value != "" {
			return value, true
		}
	}
	return "", false
}

func (l lookup) str(envKey, section, key, defaultValue string) string {
	if value, ok := l.raw(envKey, section, key); ok {
		return value
	}
	return defaultValue
}

func (l lookup) int(envKey, section, key string, defaultValue int) int {
	if value, ok := l.raw(envKey, section, key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (l lookup) bool(envKey, section, key string, defaultValue bool) bool {
	if value, ok := l.raw(envKey, section, key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return build(lookup{})
}

// LoadFromINI loads configuration from INI file with environment variable override.
// Priority: ENV > INI > default.
func LoadFromINI(iniPath string) (*Config, error) {
	_ = godotenv.Load()

	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}
	return build(lookup{file: cfgFile})
}

func build(l lookup) (*Config, error) {
	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: l.str("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Enabled:  l.bool("REDIS_ENABLED", "redis", "enabled", true),
			Addr:     l.str("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: l.str("REDIS_PASS", "redis", "pass", ""),
			DB:       l.int("REDIS_DB", "redis", "db", 0),
			Prefix:   l.str("REDIS_PREFIX", "redis", "prefix", "ngxmgr"),
			TTLSec:   l.int("REDIS_TTL_SEC", "redis", "ttl_sec", 0),
		},
		Migrate:  l.bool("MIGRATE", "app", "migrate", false),
		HTTPAddr: l.str("HTTP_ADDR", "http", "addr", ":8080"),
		Nginx: NginxConfig{
			Bin:               l.str("NGINX_BIN", "nginx", "bin", "nginx"),
			ConfPath:          l.str("NGINX_CONF", "nginx", "conf_path", "/etc/nginx/nginx.conf"),
			StagingDir:        l.str("NGINX_STAGING_DIR", "nginx", "staging_dir", "/var/lib/ngxmgr/staging"),
			ReloadCmd:         l.str("NGINX_RELOAD_CMD", "nginx", "reload_cmd", "nginx -s reload"),
			CertDir:           l.str("NGINX_CERT_DIR", "nginx", "cert_dir", "/etc/nginx/certs"),
			WorkerProcesses:   l.str("NGINX_WORKER_PROCESSES", "nginx", "worker_processes", "auto"),
			WorkerConnections: l.int("NGINX_WORKER_CONNECTIONS", "nginx", "worker_connections", 1024),
			PidPath:           l.str("NGINX_PID_PATH", "nginx", "pid_path", "/run/nginx.pid"),
			ErrorLogPath:      l.str("NGINX_ERROR_LOG", "nginx", "error_log", "/var/log/nginx/error.log"),
			MimeTypesPath:     l.str("NGINX_MIME_TYPES", "nginx", "mime_types", "/etc/nginx/mime.types"),
		},
		HealthWorker: HealthWorkerConfig{
			Enabled:          l.bool("HEALTH_WORKER_ENABLED", "health_worker", "enabled", true),
			IntervalSec:      l.int("HEALTH_WORKER_INTERVAL_SEC", "health_worker", "interval_sec", 30),
			ProbeTimeoutSec:  l.int("HEALTH_WORKER_PROBE_TIMEOUT_SEC", "health_worker", "probe_timeout_sec", 5),
			ClientTimeoutSec: l.int("HEALTH_WORKER_CLIENT_TIMEOUT_SEC", "health_worker", "client_timeout_sec", 10),
			Concurrency:      l.int("HEALTH_WORKER_CONCURRENCY", "health_worker", "concurrency", 10),
		},
		CertScanner: CertScannerConfig{
			Enabled:         l.bool("CERT_SCANNER_ENABLED", "cert_scanner", "enabled", true),
			Schedule:        l.str("CERT_SCANNER_SCHEDULE", "cert_scanner", "schedule", "@every 1h"),
			RenewBeforeDays: l.int("CERT_RENEW_BEFORE_DAYS", "cert_scanner", "renew_before_days", 30),
		},
		Log: LogConfig{
			Level:  l.str("LOG_LEVEL", "log", "level", "info"),
			Format: l.str("LOG_FORMAT", "log", "format", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.HealthWorker.IntervalSec <= 0 {
		return fmt.Errorf("health_worker.interval_sec must be positive, got %d", c.HealthWorker.IntervalSec)
	}
	if c.HealthWorker.ProbeTimeoutSec <= 0 || c.HealthWorker.ClientTimeoutSec < c.HealthWorker.ProbeTimeoutSec {
		return fmt.Errorf("health_worker timeouts invalid: probe=%ds client=%ds", c.HealthWorker.ProbeTimeoutSec, c.HealthWorker.ClientTimeoutSec)
	}
	if c.HealthWorker.Concurrency <= 0 {
		return fmt.Errorf("health_worker.concurrency must be positive, got %d", c.HealthWorker.Concurrency)
	}
	if c.CertScanner.RenewBeforeDays <= 0 {
		return fmt.Errorf("cert_scanner.renew_before_days must be positive, got %d", c.CertScanner.RenewBeforeDays)
	}
	return nil
}
