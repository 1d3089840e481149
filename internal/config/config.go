// Package config provides configuration loading and management for the sync service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/telemetry"
)

const (
	// StorageTypeFile stores everything in a local SQLite file
	StorageTypeFile = "file"

	// StorageTypeDatabase stores everything in PostgreSQL
	StorageTypeDatabase = "database"
)

// EnvPrefix is the prefix of environment variables read by the CLI
const EnvPrefix = "WB_SYNC"

// Environment variables consulted when secrets are not provided as files.
const (
	EnvAPIToken         = "WB_SYNC_API_TOKEN"
	EnvDatabasePassword = "WB_SYNC_DATABASE_PASSWORD"
)

// Defaults applied by the Get* accessors.
const (
	DefaultEndpoint           = "https://statistics-api.wildberries.ru"
	DefaultPageSize           = 100000
	DefaultRequestInterval    = time.Minute
	DefaultRequestTimeout     = 5 * time.Minute
	DefaultMinDate            = "2024-01-29"
	DefaultEmptyRetryDelay    = 30 * time.Minute
	DefaultPendingLease       = 15 * time.Minute
	DefaultPauseCheckInterval = time.Second
	DefaultRefreshPause       = 10 * time.Minute
	DefaultPollInterval       = 5 * time.Minute
	DefaultSuspiciousQuantity = 1000
	DefaultFilePath           = "./data/wb-sync.db"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Upstream  *UpstreamConfig   `yaml:"upstream"`
	Sync      *SyncConfig       `yaml:"sync,omitempty"`
	Storage   *StorageConfig    `yaml:"storage,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// UpstreamConfig defines how the reporting API is reached
type UpstreamConfig struct {
	// Endpoint is the base URL of the statistics API
	Endpoint string `yaml:"endpoint,omitempty"`

	// TokenFile is the path to a file containing the API token.
	// When empty the WB_SYNC_API_TOKEN environment variable is used.
	TokenFile string `yaml:"tokenFile,omitempty"`

	// PageSize is the maximum number of rows requested per page
	PageSize int `yaml:"pageSize,omitempty"`

	// RequestInterval is the minimum delay between two requests (e.g. "1m")
	RequestInterval string `yaml:"requestInterval,omitempty"`

	// RequestTimeout bounds a single HTTP request (e.g. "5m")
	RequestTimeout string `yaml:"requestTimeout,omitempty"`

	// TimezoneOffset is the fixed offset the API expects for range bounds (e.g. "+03:00")
	TimezoneOffset string `yaml:"timezoneOffset,omitempty"`
}

// SyncConfig tunes the scheduling and repair rules
type SyncConfig struct {
	// MinDate is the earliest date the background loop backfills (YYYY-MM-DD)
	MinDate string `yaml:"minDate,omitempty"`

	// EmptyRetryDelay is how long a period with an empty result waits before it is retried
	EmptyRetryDelay string `yaml:"emptyRetryDelay,omitempty"`

	// PendingLease is how long a Pending entry is considered in flight
	PendingLease string `yaml:"pendingLease,omitempty"`

	// PauseCheckInterval is the sleep step while the background loop is paused
	PauseCheckInterval string `yaml:"pauseCheckInterval,omitempty"`

	// RefreshPause is how long a manual refresh pauses the background loop
	RefreshPause string `yaml:"refreshPause,omitempty"`

	// PollInterval is the base interval of the service loop
	PollInterval string `yaml:"pollInterval,omitempty"`

	// SuspiciousQuantity is the quantity above which a sizeless sale record is treated as corrupt
	SuspiciousQuantity int64 `yaml:"suspiciousQuantity,omitempty"`

	// ReturnOperation is the operation name that routes a row to the return flow
	ReturnOperation string `yaml:"returnOperation,omitempty"`

	// CountedOperations are the operation names whose quantity is summed
	CountedOperations []string `yaml:"countedOperations,omitempty"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	// Type is "file" (SQLite) or "database" (PostgreSQL). Defaults to "file".
	Type     string          `yaml:"type,omitempty"`
	File     *FileConfig     `yaml:"file,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// FileConfig defines the local SQLite store
type FileConfig struct {
	// Path is the SQLite database file
	Path string `yaml:"path"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// readSecret reads a secret from file first, then from the environment.
func readSecret(file, envVar, what string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("failed to read %s from file %s: %w", what, file, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("no %s configured: set the file option or %s environment variable", what, envVar)
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from WB_SYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	return readSecret(d.PasswordFile, EnvDatabasePassword, "database password")
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// GetToken returns the API token from TokenFile, falling back to WB_SYNC_API_TOKEN
func (u *UpstreamConfig) GetToken() (string, error) {
	return readSecret(u.TokenFile, EnvAPIToken, "API token")
}

// GetEndpoint returns the API endpoint, using the default if not specified
func (u *UpstreamConfig) GetEndpoint() string {
	if u == nil || u.Endpoint == "" {
		return DefaultEndpoint
	}
	return u.Endpoint
}

// GetPageSize returns the page size, using the default if not specified
func (u *UpstreamConfig) GetPageSize() int {
	if u == nil || u.PageSize <= 0 {
		return DefaultPageSize
	}
	return u.PageSize
}

// GetRequestInterval returns the inter-request delay
func (u *UpstreamConfig) GetRequestInterval() time.Duration {
	if u == nil {
		return DefaultRequestInterval
	}
	return durationOr(u.RequestInterval, DefaultRequestInterval)
}

// GetRequestTimeout returns the per-request timeout
func (u *UpstreamConfig) GetRequestTimeout() time.Duration {
	if u == nil {
		return DefaultRequestTimeout
	}
	return durationOr(u.RequestTimeout, DefaultRequestTimeout)
}

// GetTimezoneOffset returns the fixed offset for range bounds
func (u *UpstreamConfig) GetTimezoneOffset() string {
	if u == nil || u.TimezoneOffset == "" {
		return period.DefaultOffset
	}
	return u.TimezoneOffset
}

// GetMinDate returns the earliest backfill date
func (s *SyncConfig) GetMinDate() time.Time {
	value := DefaultMinDate
	if s != nil && s.MinDate != "" {
		value = s.MinDate
	}
	t, err := period.ParseDay(value)
	if err != nil {
		t, _ = period.ParseDay(DefaultMinDate)
	}
	return t
}

// GetEmptyRetryDelay returns the retry delay after an empty result
func (s *SyncConfig) GetEmptyRetryDelay() time.Duration {
	if s == nil {
		return DefaultEmptyRetryDelay
	}
	return durationOr(s.EmptyRetryDelay, DefaultEmptyRetryDelay)
}

// GetPendingLease returns the in-flight lease of Pending entries
func (s *SyncConfig) GetPendingLease() time.Duration {
	if s == nil {
		return DefaultPendingLease
	}
	return durationOr(s.PendingLease, DefaultPendingLease)
}

// GetPauseCheckInterval returns the sleep step of a paused background loop
func (s *SyncConfig) GetPauseCheckInterval() time.Duration {
	if s == nil {
		return DefaultPauseCheckInterval
	}
	return durationOr(s.PauseCheckInterval, DefaultPauseCheckInterval)
}

// GetRefreshPause returns how long a manual refresh pauses the background loop
func (s *SyncConfig) GetRefreshPause() time.Duration {
	if s == nil {
		return DefaultRefreshPause
	}
	return durationOr(s.RefreshPause, DefaultRefreshPause)
}

// GetPollInterval returns the base service loop interval
func (s *SyncConfig) GetPollInterval() time.Duration {
	if s == nil {
		return DefaultPollInterval
	}
	return durationOr(s.PollInterval, DefaultPollInterval)
}

// GetSuspiciousQuantity returns the corruption threshold
func (s *SyncConfig) GetSuspiciousQuantity() int64 {
	if s == nil || s.SuspiciousQuantity <= 0 {
		return DefaultSuspiciousQuantity
	}
	return s.SuspiciousQuantity
}

// GetRule returns the flow classification rule
func (s *SyncConfig) GetRule() aggregate.Rule {
	rule := aggregate.DefaultRule()
	if s == nil {
		return rule
	}
	if s.ReturnOperation != "" {
		rule.ReturnOperation = s.ReturnOperation
	}
	if len(s.CountedOperations) > 0 {
		rule.CountedOperations = append([]string(nil), s.CountedOperations...)
	}
	return rule
}

// GetType returns the storage type, defaulting to file
func (s *StorageConfig) GetType() string {
	if s == nil || s.Type == "" {
		return StorageTypeFile
	}
	return s.Type
}

// GetFilePath returns the SQLite file path
func (s *StorageConfig) GetFilePath() string {
	if s == nil || s.File == nil || s.File.Path == "" {
		return DefaultFilePath
	}
	return s.File.Path
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Upstream == nil {
		return fmt.Errorf("upstream configuration is required")
	}
	if err := c.Upstream.validate(); err != nil {
		return fmt.Errorf("upstream: %w", err)
	}

	if c.Sync != nil {
		if err := c.Sync.validate(); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}

	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

func (u *UpstreamConfig) validate() error {
	if u.Endpoint != "" {
		parsed, err := url.Parse(u.Endpoint)
		if err != nil {
			return fmt.Errorf("endpoint must be a valid URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("endpoint must use http or https, got %q", u.Endpoint)
		}
	}
	if u.PageSize < 0 {
		return fmt.Errorf("pageSize must not be negative")
	}
	if err := validateDurations(map[string]string{
		"requestInterval": u.RequestInterval,
		"requestTimeout":  u.RequestTimeout,
	}); err != nil {
		return err
	}
	if _, err := period.NewCalendar(u.TimezoneOffset); err != nil {
		return fmt.Errorf("timezoneOffset: %w", err)
	}
	return nil
}

func (s *SyncConfig) validate() error {
	if s.MinDate != "" {
		if _, err := period.ParseDay(s.MinDate); err != nil {
			return fmt.Errorf("minDate must be a YYYY-MM-DD date: %w", err)
		}
	}
	if s.SuspiciousQuantity < 0 {
		return fmt.Errorf("suspiciousQuantity must not be negative")
	}
	return validateDurations(map[string]string{
		"emptyRetryDelay":    s.EmptyRetryDelay,
		"pendingLease":       s.PendingLease,
		"pauseCheckInterval": s.PauseCheckInterval,
		"refreshPause":       s.RefreshPause,
		"pollInterval":       s.PollInterval,
	})
}

func (s *StorageConfig) validate() error {
	switch s.GetType() {
	case StorageTypeFile:
		return nil
	case StorageTypeDatabase:
		if s.Database == nil {
			return fmt.Errorf("database configuration is required when type is %q", StorageTypeDatabase)
		}
		if s.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if s.Database.Database == "" {
			return fmt.Errorf("database.database is required")
		}
		if s.Database.ConnMaxLifetime != "" {
			if _, err := time.ParseDuration(s.Database.ConnMaxLifetime); err != nil {
				return fmt.Errorf("database.connMaxLifetime must be a valid duration: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage type %q (want %q or %q)", s.Type, StorageTypeFile, StorageTypeDatabase)
	}
}

func validateDurations(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g., '30m', '1h'): %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func durationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
