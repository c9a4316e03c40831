package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. F1KB_APP_LOG_LEVEL
const EnvPrefix = "F1KB"

const defaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// Placeholders of the form ${VAR_NAME} in the YAML file are expanded first.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults is like Load but tolerates a missing file, falling back to
// defaults and environment variables.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every key so that AutomaticEnv can override keys
// that are absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "f1-knowledge-base")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "f1kb")
	v.SetDefault("database.user", "f1kb")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.snapshot", "")

	v.SetDefault("search.driver_threshold", 80)
	v.SetDefault("search.team_threshold", 80)
	v.SetDefault("search.circuit_threshold", 75)
	v.SetDefault("search.race_threshold", 70)
	v.SetDefault("search.race_fallback_threshold", 80)
	v.SetDefault("search.recent_race_cap", 100)
	v.SetDefault("search.strict_match_minimum", 5)
	v.SetDefault("search.champion_keywords", []string{"чемпион", "победил", "выиграл", "champion", "winner", "won"})
	v.SetDefault("search.driver_keywords", []string{"пилот", "driver"})
	v.SetDefault("search.timeout_ms", 2000)

	v.SetDefault("standings.reserve.min_leader_races", 4)
	v.SetDefault("standings.reserve.ratio", 0.5)

	v.SetDefault("import.base_url", "http://api.jolpi.ca/ergast/f1")
	v.SetDefault("import.start_year", 2021)
	v.SetDefault("import.end_year", 2026)
	v.SetDefault("import.page_size", 100)
	v.SetDefault("import.rate_limit", 4)
	v.SetDefault("import.retries", 3)
	v.SetDefault("import.timeout_seconds", 30)
	v.SetDefault("import.cache_ttl_seconds", 600)
	v.SetDefault("import.schedule", "0 6 * * 1")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.read_timeout_seconds", 15)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// ReloadFromEnv reloads the configuration from F1KB_CONFIG_PATH when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
