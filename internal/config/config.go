package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

type StoreConfig struct {
	// Path to the sqlite file. ":memory:" is accepted for tests.
	Path string `yaml:"path"`
	// DestructiveUpgrade reproduces the legacy policy of wiping and
	// re-seeding the store on any schema version mismatch. When false
	// the declared column-add migration steps are applied in place.
	DestructiveUpgrade bool `yaml:"destructive_upgrade"`
	// GeofenceRadiusMeters is the maximum distance from a site at
	// which a technician may check in.
	GeofenceRadiusMeters float64 `yaml:"geofence_radius_meters"`
}

// Load builds the configuration from an optional YAML file with
// environment variables taking precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8490,
			Environment: "development",
		},
		Store: StoreConfig{
			Path:                 "fieldstore.db",
			DestructiveUpgrade:   true,
			GeofenceRadiusMeters: 500,
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Server.Port = getIntEnv("FIELDSTORE_PORT", cfg.Server.Port)
	cfg.Server.Environment = getEnv("APP_ENV", cfg.Server.Environment)
	cfg.Store.Path = getEnv("FIELDSTORE_DB_PATH", cfg.Store.Path)
	cfg.Store.DestructiveUpgrade = getBoolEnv("FIELDSTORE_DESTRUCTIVE_UPGRADE", cfg.Store.DestructiveUpgrade)
	cfg.Store.GeofenceRadiusMeters = getFloatEnv("FIELDSTORE_GEOFENCE_RADIUS_M", cfg.Store.GeofenceRadiusMeters)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
