package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/glexport/schema"
)

// Default values for configuration.
const (
	DefaultBranch   = "master"
	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = 10 * time.Minute
	DefaultLogLevel = "warn"
)

// DateFormat is the calendar-day layout used for --from, --to and commit grouping.
const DateFormat = "2006-01-02"

// Config holds the runtime configuration for an export.
// It is built once by ProcessAndValidate and treated as immutable afterwards.
type Config struct {
	APIURL string
	Token  string // Please use env var as this is plaintext

	From   string // YYYY-MM-DD, empty means unbounded
	To     string // YYYY-MM-DD, empty means unbounded
	Branch string

	Group   string
	Project string
	Email   string

	SkipGroupSelection bool
	SkipMergedCommits  bool

	Output     schema.OutputMode
	OutputFile string
	Timeout    time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseColors bool
	LogLevel  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	APIURL           string `mapstructure:"gitlab-api-url"`
	Token            string `mapstructure:"gitlab-token"`
	Timeout          string `mapstructure:"timeout"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Color            string `mapstructure:"color"`
	LogLevel         string `mapstructure:"log-level"`

	// --- Fields from the export and preview commands ---
	From               string `mapstructure:"from"`
	To                 string `mapstructure:"to"`
	Branch             string `mapstructure:"branch"`
	Group              string `mapstructure:"group"`
	Project            string `mapstructure:"project"`
	Email              string `mapstructure:"email"`
	SkipGroupSelection bool   `mapstructure:"skip-group-selection"`
	SkipMergedCommits  bool   `mapstructure:"skip-merged-commits"`
	Output             string `mapstructure:"output"`
	OutputFile         string `mapstructure:"output-file"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. It never touches the network.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateConnection(cfg, input); err != nil {
		return err
	}
	if err := processDateRange(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateConnection checks the API URL and token required before any request.
func validateConnection(cfg *Config, input *ConfigRawInput) error {
	apiURL := strings.TrimSpace(input.APIURL)
	if apiURL == "" {
		return &ConfigError{Field: "gitlab-api-url", Msg: "GitLab API url is missing"}
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "gitlab-api-url", Msg: fmt.Sprintf("invalid GitLab API url %q", apiURL)}
	}
	cfg.APIURL = strings.TrimRight(apiURL, "/")

	token := strings.TrimSpace(input.Token)
	if token == "" {
		return &ConfigError{Field: "gitlab-token", Msg: "GitLab private token is missing"}
	}
	cfg.Token = token

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil || d <= 0 {
			return &ConfigError{Field: "timeout", Msg: fmt.Sprintf("invalid timeout %q", input.Timeout)}
		}
		cfg.Timeout = d
	}
	return nil
}

// RevalidateDateRange replaces the date bounds of an already validated config.
func RevalidateDateRange(cfg *Config, from, to string) error {
	return processDateRange(cfg, &ConfigRawInput{From: from, To: to})
}

// processDateRange validates the calendar-day bounds.
func processDateRange(cfg *Config, input *ConfigRawInput) error {
	cfg.From = strings.TrimSpace(input.From)
	cfg.To = strings.TrimSpace(input.To)

	var from, to time.Time
	var err error
	if cfg.From != "" {
		if from, err = time.Parse(DateFormat, cfg.From); err != nil {
			return &ConfigError{Field: "from", Msg: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", cfg.From)}
		}
	}
	if cfg.To != "" {
		if to, err = time.Parse(DateFormat, cfg.To); err != nil {
			return &ConfigError{Field: "to", Msg: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", cfg.To)}
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return &ConfigError{Field: "from", Msg: fmt.Sprintf("from (%s) cannot be after to (%s)", cfg.From, cfg.To)}
	}
	return nil
}

// validateSimpleInputs transfers and validates the selection and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Branch = strings.TrimSpace(input.Branch)
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	cfg.Group = strings.TrimSpace(input.Group)
	cfg.Project = strings.TrimSpace(input.Project)
	cfg.Email = strings.TrimSpace(input.Email)
	cfg.SkipGroupSelection = input.SkipGroupSelection
	cfg.SkipMergedCommits = input.SkipMergedCommits
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)

	output := input.Output
	if output == "" {
		output = string(schema.CSVOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return &ConfigError{Field: "output", Msg: fmt.Sprintf("invalid output format '%s'. must be csv, json, parquet, text", input.Output)}
	}

	color := input.Color
	if color == "" {
		color = "yes"
	}
	colors, err := ParseBoolString(color)
	if err != nil {
		return &ConfigError{Field: "color", Msg: err.Error()}
	}
	cfg.UseColors = colors

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cacheBackend := input.CacheBackend
	if cacheBackend == "" {
		cacheBackend = string(schema.NoneBackend)
	}
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(cacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return &ConfigError{Field: "cache-backend", Msg: fmt.Sprintf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)}
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return &ConfigError{Field: "cache-db-connect", Msg: err.Error()}
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil || ttl < 0 {
			return &ConfigError{Field: "cache-ttl", Msg: fmt.Sprintf("invalid cache ttl %q", input.CacheTTL)}
		}
		cfg.CacheTTL = ttl
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return &ConfigError{Field: "history-backend", Msg: fmt.Sprintf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)}
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return &ConfigError{Field: "history-db-connect", Msg: err.Error()}
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return &ConfigError{Field: "history-db-connect", Msg: fmt.Sprintf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)}
		}
	}
	return nil
}
