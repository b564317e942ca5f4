package config

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/sections"
	"github.com/aretw0/sections/internal/logging"
	loamAdapter "github.com/aretw0/sections/pkg/adapters/loam"
	"github.com/aretw0/sections/pkg/template"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "sections.yaml"

// Config is the content of a sections.yaml (or .json) file.
type Config struct {
	// TemplatesDir is a Loam directory of template files.
	TemplatesDir string `mapstructure:"templates_dir"`
	// Templates are inline templates, in file order.
	Templates []template.Definition `mapstructure:"-"`
	// Widget synthesizes the root template from section settings.
	Widget *Widget `mapstructure:"widget"`
	// RootPolicy names the template each document root must hold. The
	// widget sets it to the synthesized root.
	RootPolicy      string `mapstructure:"root_policy"`
	MaxRepairCycles int    `mapstructure:"max_repair_cycles"`
	LogLevel        string `mapstructure:"log_level"`
	Server          Server `mapstructure:"server"`
}

// Server configures the HTTP and MCP surfaces.
type Server struct {
	Port          int      `mapstructure:"port"`
	Redis         *Redis   `mapstructure:"redis"`
	// EncryptionKey is a 32-byte AES key, hex or base64 encoded. Stored
	// documents are encrypted when it is set.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys decrypt documents written before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`
	// PIIPatterns mask matching attribute names before storage.
	PIIPatterns []string `mapstructure:"pii_patterns"`
}

// Keys decodes the encryption keys. It returns a nil active key when
// encryption is off.
func (s Server) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		if key, err = base64.StdEncoding.DecodeString(s); err != nil {
			return nil, errors.New("key must be hex or base64")
		}
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Redis configures the Redis document store.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// templateEntry is the long form of an inline template.
type templateEntry struct {
	Label    string `mapstructure:"label"`
	Template string `mapstructure:"template"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server:   Server{Port: 8080},
	}
}

// Load reads a configuration file. A missing file at DefaultPath yields
// Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML or JSON configuration. Inline templates keep the
// order in which they appear.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("config must be a mapping")
	}

	raw := make(map[string]any)
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	delete(raw, "templates")

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "templates" {
			if cfg.Templates, err = decodeTemplates(root.Content[i+1]); err != nil {
				return nil, err
			}
		}
	}
	return cfg, nil
}

func decodeTemplates(node *yaml.Node) ([]template.Definition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("templates must be a mapping of name to markup")
	}

	defs := make([]template.Definition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		def := template.Definition{Name: name}
		switch value.Kind {
		case yaml.ScalarNode:
			def.Markup = value.Value
		case yaml.MappingNode:
			var raw map[string]any
			if err := value.Decode(&raw); err != nil {
				return nil, fmt.Errorf("template %q: %w", name, err)
			}
			var entry templateEntry
			if err := mapstructure.Decode(raw, &entry); err != nil {
				return nil, fmt.Errorf("template %q: %w", name, err)
			}
			def.Label = entry.Label
			def.Markup = entry.Template
		default:
			return nil, fmt.Errorf("template %q: expected markup or a mapping", name)
		}
		def.Markup = strings.TrimSpace(def.Markup)
		if def.Markup == "" {
			return nil, fmt.Errorf("template %q has no markup", name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Definitions returns every template the configuration provides: those of
// TemplatesDir, then the inline ones, then the widget root.
func (c *Config) Definitions(ctx context.Context) ([]template.Definition, error) {
	_, defs, _, err := c.resolve(ctx)
	return defs, err
}

// resolve opens TemplatesDir and validates the widget against every
// template. extra holds the definitions that do not come from the source.
func (c *Config) resolve(ctx context.Context) (src *loamAdapter.Source, defs, extra []template.Definition, err error) {
	if c.TemplatesDir != "" {
		if src, err = loamAdapter.Open(c.TemplatesDir); err != nil {
			return nil, nil, nil, err
		}
		if defs, err = src.LoadTemplates(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load templates from %s: %w", c.TemplatesDir, err)
		}
	}
	extra = slices.Clone(c.Templates)

	if c.Widget != nil {
		root, err := c.Widget.Root(append(slices.Clone(defs), extra...))
		if err != nil {
			return nil, nil, nil, err
		}
		extra = append(extra, root)
	}
	return src, append(defs, extra...), extra, nil
}

// EngineOptions turns the configuration into engine options. Templates of
// TemplatesDir stay behind their source so the engine can watch them.
func (c *Config) EngineOptions(ctx context.Context) ([]sections.Option, error) {
	src, defs, extra, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("no templates configured")
	}

	var opts []sections.Option
	if src != nil {
		opts = append(opts, sections.WithTemplateSource(src))
	}
	if len(extra) > 0 {
		opts = append(opts, sections.WithTemplates(extra...))
	}

	policy := c.RootPolicy
	if c.Widget != nil {
		policy = RootTemplate
	}
	if policy != "" {
		opts = append(opts, sections.WithRootPolicy(policy))
	}
	if c.MaxRepairCycles > 0 {
		opts = append(opts, sections.WithMaxRepairCycles(c.MaxRepairCycles))
	}
	return opts, nil
}
