// Package config provides configuration management for the F1 knowledge base.
package config

import (
	"fmt"
	"time"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Store     StoreConfig     `mapstructure:"store" validate:"required"`
	Search    SearchConfig    `mapstructure:"search" validate:"required"`
	Standings StandingsConfig `mapstructure:"standings" validate:"required"`
	Import    ImportConfig    `mapstructure:"import" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	Snapshot string `mapstructure:"snapshot"`
}

// SearchConfig holds the fuzzy search thresholds and caps. Scores are 0-100
// and a candidate must score strictly above the threshold.
type SearchConfig struct {
	DriverThreshold       float64  `mapstructure:"driver_threshold" validate:"threshold"`
	TeamThreshold         float64  `mapstructure:"team_threshold" validate:"threshold"`
	CircuitThreshold      float64  `mapstructure:"circuit_threshold" validate:"threshold"`
	RaceThreshold         float64  `mapstructure:"race_threshold" validate:"threshold"`
	RaceFallbackThreshold float64  `mapstructure:"race_fallback_threshold" validate:"threshold"`
	RecentRaceCap         int      `mapstructure:"recent_race_cap" validate:"required,gt=0"`
	StrictMatchMinimum    int      `mapstructure:"strict_match_minimum" validate:"required,gt=0"`
	ChampionKeywords      []string `mapstructure:"champion_keywords" validate:"required,min=1"`
	DriverKeywords        []string `mapstructure:"driver_keywords"`
	TimeoutMillis         int      `mapstructure:"timeout_ms" validate:"gte=0"`
}

// Timeout returns the search wall-clock budget, zero meaning unbounded
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMillis) * time.Millisecond
}

// StandingsConfig holds standings computation settings
type StandingsConfig struct {
	Reserve ReserveConfig `mapstructure:"reserve" validate:"required"`
}

// ReserveConfig holds the reserve driver heuristic
type ReserveConfig struct {
	MinLeaderRaces int     `mapstructure:"min_leader_races" validate:"gte=0"`
	Ratio          float64 `mapstructure:"ratio" validate:"gt=0,lte=1"`
}

// ImportConfig represents Jolpica import configuration
type ImportConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	StartYear       int     `mapstructure:"start_year" validate:"required,gte=1950"`
	EndYear         int     `mapstructure:"end_year" validate:"required,gte=1950"`
	PageSize        int     `mapstructure:"page_size" validate:"required,gt=0,lte=1000"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	Retries         int     `mapstructure:"retries" validate:"gte=0"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	Schedule        string  `mapstructure:"schedule"`
}

// ServerConfig represents the JSON API server configuration
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort        int `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
	ReadTimeoutSecond int `mapstructure:"read_timeout_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesPostgres reports whether the entity store is backed by PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.Store.Driver == StoreDriverPostgres
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
