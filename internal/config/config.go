// Package config loads the server configuration.
//
// Precedence (low -> high): defaults, .env file, NCRM_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "NCRM_"

// Config contains process configuration
type Config struct {
	Port    string `koanf:"port"`
	GinMode string `koanf:"gin_mode"`

	DBHost         string `koanf:"db_host"`
	DBPort         string `koanf:"db_port"`
	DBUser         string `koanf:"db_user"`
	DBPassword     string `koanf:"db_password"`
	DBName         string `koanf:"db_name"`
	DBMaxOpenConns int    `koanf:"db_max_open_conns"`

	JWTSecret string `koanf:"jwt_secret"`

	// Storage is disabled when StorageEndpoint is empty.
	StorageEndpoint  string `koanf:"storage_endpoint"`
	StorageAccessKey string `koanf:"storage_access_key"`
	StorageSecretKey string `koanf:"storage_secret_key"`
	StorageBucket    string `koanf:"storage_bucket"`
	StorageUseSSL    bool   `koanf:"storage_use_ssl"`
}

// New returns a Config filled with defaults
func New() *Config {
	return &Config{
		Port:           "3001",
		GinMode:        "release",
		DBHost:         "127.0.0.1",
		DBPort:         "3306",
		DBName:         "next_crm",
		DBMaxOpenConns: 50,
		StorageBucket:  "ncrm-files",
	}
}

// Load builds a Config from defaults, an optional .env file and the
// environment. envFiles defaults to ".env"; missing files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
		log.Printf("📁 Loaded environment from %s", p)
	}

	k := koanf.New(".")

	// NCRM_DB_HOST -> db_host
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("db_max_open_conns must be positive")
	}
	return nil
}

// StorageEnabled reports whether a blob store is configured
func (c *Config) StorageEnabled() bool {
	return c.StorageEndpoint != ""
}
