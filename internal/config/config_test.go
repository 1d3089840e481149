package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		yamlContent string
		wantErr     string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "full_config",
			yamlContent: `upstream:
  endpoint: https://statistics-api.wildberries.ru
  tokenFile: /run/secrets/wb-token
  pageSize: 5000
  requestInterval: 90s
  timezoneOffset: "+03:00"
sync:
  minDate: "2024-02-05"
  emptyRetryDelay: 45m
  pendingLease: 20m
  suspiciousQuantity: 500
  returnOperation: "Возврат"
storage:
  type: database
  database:
    host: localhost
    port: 5432
    user: wb
    database: wb_sync
    sslMode: disable
telemetry:
  enabled: false`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 5000, cfg.Upstream.GetPageSize())
				assert.Equal(t, 90*time.Second, cfg.Upstream.GetRequestInterval())
				assert.Equal(t, DefaultRequestTimeout, cfg.Upstream.GetRequestTimeout())
				assert.Equal(t, "2024-02-05", cfg.Sync.GetMinDate().Format("2006-01-02"))
				assert.Equal(t, 45*time.Minute, cfg.Sync.GetEmptyRetryDelay())
				assert.Equal(t, 20*time.Minute, cfg.Sync.GetPendingLease())
				assert.Equal(t, int64(500), cfg.Sync.GetSuspiciousQuantity())
				assert.Equal(t, StorageTypeDatabase, cfg.Storage.GetType())
				assert.Equal(t, "wb_sync", cfg.Storage.Database.Database)
			},
		},
		{
			name: "minimal_config_uses_defaults",
			yamlContent: `upstream:
  tokenFile: /run/secrets/wb-token`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, DefaultEndpoint, cfg.Upstream.GetEndpoint())
				assert.Equal(t, DefaultPageSize, cfg.Upstream.GetPageSize())
				assert.Equal(t, "+03:00", cfg.Upstream.GetTimezoneOffset())
				assert.Equal(t, DefaultMinDate, cfg.Sync.GetMinDate().Format("2006-01-02"))
				assert.Equal(t, DefaultEmptyRetryDelay, cfg.Sync.GetEmptyRetryDelay())
				assert.Equal(t, DefaultPollInterval, cfg.Sync.GetPollInterval())
				assert.Equal(t, StorageTypeFile, cfg.Storage.GetType())
				assert.Equal(t, DefaultFilePath, cfg.Storage.GetFilePath())
				assert.Equal(t, aggregate.DefaultRule(), cfg.Sync.GetRule())
			},
		},
		{
			name:        "missing_upstream",
			yamlContent: `storage: {type: file}`,
			wantErr:     "upstream configuration is required",
		},
		{
			name: "invalid_duration",
			yamlContent: `upstream: {}
sync:
  emptyRetryDelay: soon`,
			wantErr: "emptyRetryDelay must be a valid duration",
		},
		{
			name: "invalid_min_date",
			yamlContent: `upstream: {}
sync:
  minDate: 2024/01/29`,
			wantErr: "minDate must be a YYYY-MM-DD date",
		},
		{
			name: "invalid_offset",
			yamlContent: `upstream:
  timezoneOffset: "Moscow"`,
			wantErr: "timezoneOffset",
		},
		{
			name: "database_without_settings",
			yamlContent: `upstream: {}
storage:
  type: database`,
			wantErr: "database configuration is required",
		},
		{
			name: "unknown_storage_type",
			yamlContent: `upstream: {}
storage:
  type: badger`,
			wantErr: "unsupported storage type",
		},
		{
			name:        "invalid_yaml",
			yamlContent: "upstream: [",
			wantErr:     "failed to parse YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadConfig(WithConfigPath(writeConfig(t, tt.yamlContent)))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestWithConfigPath(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(WithConfigPath(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")

	_, err = LoadConfig(WithConfigPath("/nonexistent/config.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to evaluate symlinks")

	_, err = LoadConfig()
	require.Error(t, err)
}

func TestDatabaseConfigGetPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		missingFile  bool
		wantPassword string
		errMsg       string
	}{
		{name: "password_from_file", content: "mypassword", wantPassword: "mypassword"},
		{name: "password_from_file_with_whitespace", content: "  mypassword\n\t", wantPassword: "mypassword"},
		{name: "password_file_not_found", missingFile: true, errMsg: "failed to read database password from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &DatabaseConfig{Host: "localhost", Port: 5432, User: "wb", Database: "wb"}
			if tt.missingFile {
				cfg.PasswordFile = "/nonexistent/password.txt"
			} else {
				cfg.PasswordFile = filepath.Join(t.TempDir(), "password.txt")
				require.NoError(t, os.WriteFile(cfg.PasswordFile, []byte(tt.content), 0600))
			}

			password, err := cfg.GetPassword()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPassword, password)
		})
	}
}

func TestDatabaseConfigGetPasswordFromEnv(t *testing.T) {
	t.Setenv(EnvDatabasePassword, "p@ss word")

	cfg := &DatabaseConfig{Host: "db", Port: 5432, User: "wb", Database: "wb_sync"}
	conn, err := cfg.GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://wb:p%40ss+word@db:5432/wb_sync?sslmode=require", conn)
}

func TestUpstreamConfigGetToken(t *testing.T) {
	t.Setenv(EnvAPIToken, "")

	u := &UpstreamConfig{}
	_, err := u.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAPIToken)

	u.TokenFile = filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(u.TokenFile, []byte("secret\n"), 0600))
	token, err := u.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestSyncConfigGetRule(t *testing.T) {
	t.Parallel()

	s := &SyncConfig{ReturnOperation: "Return", CountedOperations: []string{"Sale", "Return"}}
	rule := s.GetRule()
	assert.Equal(t, "Return", rule.ReturnOperation)
	assert.Equal(t, []string{"Sale", "Return"}, rule.CountedOperations)
}
