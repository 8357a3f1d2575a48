package contract

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/glexport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		APIURL: "https://gitlab.example.com/api/v4",
		Token:  "secret",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectField string // empty means success
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
		},
		{
			name:        "missing api url",
			mutate:      func(in *ConfigRawInput) { in.APIURL = "" },
			expectField: "gitlab-api-url",
		},
		{
			name:        "api url without scheme",
			mutate:      func(in *ConfigRawInput) { in.APIURL = "gitlab.example.com" },
			expectField: "gitlab-api-url",
		},
		{
			name:        "missing token",
			mutate:      func(in *ConfigRawInput) { in.Token = "  " },
			expectField: "gitlab-token",
		},
		{
			name:        "invalid timeout",
			mutate:      func(in *ConfigRawInput) { in.Timeout = "soon" },
			expectField: "timeout",
		},
		{
			name:        "invalid from date",
			mutate:      func(in *ConfigRawInput) { in.From = "2024/01/02" },
			expectField: "from",
		},
		{
			name:        "invalid to date",
			mutate:      func(in *ConfigRawInput) { in.To = "yesterday" },
			expectField: "to",
		},
		{
			name: "from after to",
			mutate: func(in *ConfigRawInput) {
				in.From = "2024-02-01"
				in.To = "2024-01-01"
			},
			expectField: "from",
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectField: "output",
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectField: "color",
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			expectField: "cache-backend",
		},
		{
			name: "mysql cache without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
			},
			expectField: "cache-db-connect",
		},
		{
			name:        "invalid cache ttl",
			mutate:      func(in *ConfigRawInput) { in.CacheTTL = "-1m" },
			expectField: "cache-ttl",
		},
		{
			name: "postgres history with bad connection string",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = "postgresql"
				in.HistoryDBConnect = "user=x"
			},
			expectField: "history-db-connect",
		},
		{
			name: "cache and history share sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.HistoryBackend = "sqlite"
				in.CacheDBConnect = "/tmp/shared.db"
				in.HistoryDBConnect = "/tmp/shared.db"
			},
			expectField: "history-db-connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.expectField, cfgErr.Field)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.APIURL = "https://gitlab.example.com/api/v4/"
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://gitlab.example.com/api/v4", cfg.APIURL)
	assert.Equal(t, DefaultBranch, cfg.Branch)
	assert.Equal(t, schema.CSVOut, cfg.Output)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Empty(t, cfg.HistoryBackend)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestProcessAndValidateFullInput(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	input := &ConfigRawInput{
		APIURL:             "http://localhost:8080/api/v4",
		Token:              "token",
		Timeout:            "5s",
		From:               "2024-01-01",
		To:                 "2024-01-31",
		Branch:             "main",
		Group:              "platform",
		Project:            "api*",
		Email:              "dev@example.com",
		SkipGroupSelection: true,
		SkipMergedCommits:  true,
		Output:             "JSON",
		OutputFile:         "out.json",
		CacheBackend:       "sqlite",
		CacheDBConnect:     filepath.Join(dir, "cache.db"),
		CacheTTL:           "1h",
		HistoryBackend:     "sqlite",
		HistoryDBConnect:   filepath.Join(dir, "history.db"),
		Color:              "no",
		LogLevel:           "DEBUG",
	}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "2024-01-01", cfg.From)
	assert.Equal(t, "2024-01-31", cfg.To)
	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "api*", cfg.Project)
	assert.True(t, cfg.SkipGroupSelection)
	assert.True(t, cfg.SkipMergedCommits)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, "debug", cfg.LogLevel)

	clone := cfg.Clone()
	clone.Branch = "other"
	assert.Equal(t, "main", cfg.Branch)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/glexport", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/glexport", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost user=u dbname=glexport", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRevalidateDateRange(t *testing.T) {
	cfg := &Config{From: "2020-01-01", To: "2020-12-31"}

	require.NoError(t, RevalidateDateRange(cfg, "2024-01-01", ""))
	assert.Equal(t, "2024-01-01", cfg.From)
	assert.Empty(t, cfg.To)

	err := RevalidateDateRange(cfg, "2024-02-01", "2024-01-01")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "from", cfgErr.Field)

	assert.Error(t, RevalidateDateRange(cfg, "", "01/02/2024"))
}
