package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEYSEQ_"

// Load returns the defaults overlaid with the TOML file at path (if it
// exists) and the environment. An empty path skips the file. The result
// is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, expandHome(path)); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keyseq", "config.toml")
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(cfg, path, data)
}

// parse decodes data over cfg. Unknown keys are rejected.
func parse(cfg *Config, source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	cfg.Hook.Script = expandHome(cfg.Hook.Script)
	return nil
}

// envBinding maps one variable to one setting.
type envBinding struct {
	name string
	set  func(*Config, string) error
}

var envBindings = []envBinding{
	{"TOKEN_CAPACITY", func(c *Config, v string) error { return setInt(&c.Channels.TokenCapacity, v) }},
	{"SNAPSHOT_CAPACITY", func(c *Config, v string) error { return setInt(&c.Channels.SnapshotCapacity, v) }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = v; return nil }},
	{"LOG_FILE", func(c *Config, v string) error { c.Logging.File = v; return nil }},
	{"POSITION", func(c *Config, v string) error { c.Printer.Position = v; return nil }},
	{"COLOR", func(c *Config, v string) error { c.Printer.Color = v; return nil }},
	{"HOOK", func(c *Config, v string) error { c.Hook.Script = expandHome(v); return nil }},
}

// applyEnv overlays KEYSEQ_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
