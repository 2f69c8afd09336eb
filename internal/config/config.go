package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"strings-sorter/internal/localize"
)

// EnvPrefix namespaces every environment variable read by the tool.
const EnvPrefix = "STRINGS_SORTER"

// Keys shared by flags, environment variables and .env files.
const (
	KeyWorkers     = "workers"
	KeyDuplicates  = "duplicates"
	KeyExtensions  = "extensions"
	KeyFailFast    = "fail_fast"
	KeyCheck       = "check"
	KeyDatabaseURL = "database_url"
	KeyLogLevel    = "log_level"
	KeyJSONLogs    = "json_logs"
)

type Config struct {
	WorkerCount int
	Duplicates  localize.DuplicatePolicy
	Extensions  []string
	FailFast    bool
	Check       bool
	DatabaseURL string
	LogLevel    string
	JSONLogs    bool
}

// SetDefaults registers default values on v and makes it read
// STRINGS_SORTER_* environment variables.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyWorkers, 4)
	v.SetDefault(KeyDuplicates, string(localize.DuplicatesPreserve))
	v.SetDefault(KeyExtensions, []string{".strings"})
	v.SetDefault(KeyFailFast, false)
	v.SetDefault(KeyCheck, false)
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyJSONLogs, false)
}

// Load reads an optional .env file into the environment and builds a
// Config from v. Flags bound to v take precedence over the environment.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	policy, err := localize.ParseDuplicatePolicy(v.GetString(KeyDuplicates))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", KeyDuplicates, err)
	}

	cfg := &Config{
		WorkerCount: v.GetInt(KeyWorkers),
		Duplicates:  policy,
		Extensions:  normalizeExtensions(v.GetStringSlice(KeyExtensions)),
		FailFast:    v.GetBool(KeyFailFast),
		Check:       v.GetBool(KeyCheck),
		DatabaseURL: v.GetString(KeyDatabaseURL),
		LogLevel:    v.GetString(KeyLogLevel),
		JSONLogs:    v.GetBool(KeyJSONLogs),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if c.WorkerCount < 1 {
		return fmt.Errorf("config %s: must be at least 1, got %d", KeyWorkers, c.WorkerCount)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("config %s: at least one extension is required", KeyExtensions)
	}
	return nil
}

// normalizeExtensions lowercases extensions and adds the leading dot.
// Comma-separated values from the environment are split.
func normalizeExtensions(raw []string) []string {
	var exts []string
	seen := make(map[string]bool)
	for _, item := range raw {
		for _, ext := range strings.Split(item, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if seen[ext] {
				continue
			}
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	return exts
}
