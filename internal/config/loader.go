package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "RELIEF_"
	envConfigPath = "RELIEF_CONFIG"
)

type loadOptions struct {
	path string
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithFile loads the given YAML file instead of the one named by RELIEF_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or RELIEF_CONFIG
//  3. env (prefix RELIEF_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	lo := loadOptions{path: os.Getenv(envConfigPath)}
	for _, opt := range opts {
		opt(&lo)
	}

	base := New()
	k := koanf.New(".")

	if lo.path != "" {
		if err := k.Load(file.Provider(lo.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, lo.path, err)
		}
	}

	// RELIEF_QUEUE_SIZE -> queue_size; underscores are kept to match koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.DefaultProfile = strings.ToLower(strings.TrimSpace(cfg.DefaultProfile))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
