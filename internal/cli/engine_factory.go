package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/internal/config"
	"github.com/aretw0/sections/internal/logging"
	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/observability"
)

// EngineOptions selects where templates come from.
type EngineOptions struct {
	// Dir is a template directory, used when no configuration provides
	// templates.
	Dir string
	// ConfigPath overrides the configuration lookup in Dir.
	ConfigPath string
	Debug      bool
}

var configNames = []string{"sections.yaml", "sections.yml", "sections.json"}

// LoadConfig returns the configuration at explicit, or the first
// configuration file found in dir. It returns a nil Config when there is
// none.
func LoadConfig(dir, explicit string) (*config.Config, string, error) {
	if explicit != "" {
		cfg, err := config.Load(explicit)
		return cfg, explicit, err
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := config.Load(path)
			return cfg, path, err
		}
	}
	return nil, "", nil
}

// CreateEngine initializes an Engine with standard CLI conventions: a
// configuration file wins over the bare template directory.
func CreateEngine(ctx context.Context, opts EngineOptions, hooks ...domain.LifecycleHooks) (*sections.Engine, *config.Config, *slog.Logger, error) {
	cfg, path, err := LoadConfig(opts.Dir, opts.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := createLogger(opts.Debug, cfg)

	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	engineOpts := []sections.Option{
		sections.WithLogger(logger),
		sections.WithLifecycleHooks(observability.Combine(hooks...)),
	}

	if cfg != nil {
		logger.Debug("using configuration", "path", path)
		if cfg.TemplatesDir != "" && !filepath.IsAbs(cfg.TemplatesDir) {
			cfg.TemplatesDir = filepath.Join(filepath.Dir(path), cfg.TemplatesDir)
		}
		if cfg.TemplatesDir == "" && len(cfg.Templates) == 0 && opts.Dir != filepath.Dir(path) {
			cfg.TemplatesDir = opts.Dir
		}
		cfgOpts, err := cfg.EngineOptions(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid configuration %s: %w", path, err)
		}
		engineOpts = append(engineOpts, cfgOpts...)
	}

	engine, err := sections.New(opts.Dir, engineOpts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, cfg, logger, nil
}

// createLogger configures the application logger.
// It writes to Stderr (to separate from Stdout documents).
func createLogger(debug bool, cfg *config.Config) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	if cfg != nil && cfg.LogLevel != "" {
		return logging.New(cfg.Level())
	}
	return logging.NewNop()
}
