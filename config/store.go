package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store provides the plugin configuration. Hosts with their own persisted
// plugin storage implement this; FileStore is provided for hosts that
// configure the module from a file and environment variables.
type Store interface {
	// GetConfiguration returns the current plugin configuration.
	// It is called once per flow invocation.
	GetConfiguration(ctx context.Context) (*Configuration, error)
}

// StaticStore is a Store that always returns a fixed configuration.
// Useful for tests and hosts that manage configuration themselves.
type StaticStore struct {
	Configuration Configuration
}

// GetConfiguration implements Store.
func (s *StaticStore) GetConfiguration(context.Context) (*Configuration, error) {
	cfg := s.Configuration
	return &cfg, nil
}

// FileStore loads the plugin configuration from a YAML file with
// environment variable overrides (prefix OIDC_, e.g. OIDC_CLIENT_SECRET).
// A .env file next to the working directory is loaded when present.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the given config file path.
// An optional .env file is loaded into the process environment first.
func NewFileStore(path string) *FileStore {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return &FileStore{path: path}
}

// GetConfiguration implements Store.
func (s *FileStore) GetConfiguration(context.Context) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetEnvPrefix("OIDC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("activate_new_users", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", s.path, err)
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", s.path, err)
	}
	return &cfg, nil
}
