package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"kind2/cmd/kind2/driver"
)

// appName is the single source of truth for the application name.
// Env vars and config paths are derived from it.
const appName = "kind2"

const configFileName = "config.yml"

var envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"

// Config holds the settings of the execution environment.
type Config struct {
	// StackSize is the minimum stack budget for compilation and reduction.
	StackSize ByteSize `yaml:"stack_size"`
	// MaxNodes caps the engine's graph memory in cells. 0 means unlimited.
	MaxNodes int `yaml:"max_nodes"`
	// Debug is the default for --debug.
	Debug bool `yaml:"debug"`
}

func defaultConfig() Config {
	return Config{StackSize: driver.DefaultStackSize}
}

func (c Config) validate() error {
	if c.StackSize == 0 {
		return errors.New("stack_size must be greater than zero")
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must not be negative, got %d", c.MaxNodes)
	}
	return nil
}

// ByteSize is a byte count written in humanized form ("64MiB", "1.5 GB")
// in config files and flags. Plain integers are bytes.
type ByteSize uint64

var _ pflag.Value = (*ByteSize)(nil)

func (b ByteSize) String() string { return humanize.IBytes(uint64(b)) }

func (b *ByteSize) Set(s string) error {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}
	*b = ByteSize(n)
	return nil
}

func (b *ByteSize) Type() string { return "bytes" }

func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	if err := b.Set(node.Value); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

func (b ByteSize) MarshalYAML() (any, error) { return b.String(), nil }

// resolveConfigDir returns the base config directory for the application.
// Priority: $KIND2_CONFIG_DIR > $XDG_CONFIG_HOME/kind2 > ~/.config/kind2
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// loadConfig reads the config file at path, or the default config file when
// path is empty. A missing default file yields the defaults; a missing
// explicit file is an error. It returns the path that was consulted.
func loadConfig(path string) (Config, string, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := resolveConfigDir()
		if err != nil {
			return cfg, "", err
		}
		path = filepath.Join(dir, configFileName)
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, path, nil
	}
	if err != nil {
		return cfg, path, fmt.Errorf("config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err = decodeConfig(f)
	if err != nil {
		return cfg, path, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

// decodeConfig parses a config document on top of the defaults. Unknown
// keys are rejected.
func decodeConfig(r io.Reader) (Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// encodeConfig writes cfg as a config document.
func encodeConfig(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
