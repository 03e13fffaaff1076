package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

// ServerEnv holds settings read from the process environment.
type ServerEnv struct {
	Port           int    `env:"PORT,default=8080"`
	StoreBackend   string `env:"STORE_BACKEND,default=memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SupabaseURL    string `env:"SUPABASE_URL"`
	SupabaseKey    string `env:"SUPABASE_SERVICE_KEY"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`
	LogFormat      string `env:"LOG_FORMAT,default=text"`
	MetricsEnabled bool   `env:"METRICS_ENABLED,default=true"`
}

// LoadServerEnv decodes ServerEnv from the environment.
func LoadServerEnv() (*ServerEnv, error) {
	var env ServerEnv
	if err := decodeEnv(&env); err != nil {
		return nil, fmt.Errorf("failed to read server environment: %w", err)
	}
	return &env, nil
}

// AsConfig returns the environment as a Config suitable for MergeWithDefaults.
func (e *ServerEnv) AsConfig() Config {
	return Config{
		Store:       e.StoreBackend,
		DatabaseURL: e.DatabaseURL,
		SupabaseURL: e.SupabaseURL,
		SupabaseKey: e.SupabaseKey,
		Port:        e.Port,
		LogLevel:    e.LogLevel,
		LogFormat:   e.LogFormat,
	}
}

// decodeEnv decodes target, treating "nothing set" as success so that defaults apply.
func decodeEnv(target any) error {
	err := envdecode.Decode(target)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return err
	}
	return nil
}
