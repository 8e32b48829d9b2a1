package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/renderer/backend"
)

// DefaultCapacity is the default size of both broadcast channels.
const DefaultCapacity = 8

// MaxCapacity bounds channel capacities.
const MaxCapacity = 1 << 16

// Positions lists the accepted printer positions.
var Positions = []string{"bottom-right", "top-left"}

// Config holds all startup settings.
type Config struct {
	Channels ChannelsConfig `toml:"channels"`
	Logging  LoggingConfig  `toml:"logging"`
	Printer  PrinterConfig  `toml:"printer"`
	Hook     HookConfig     `toml:"hook"`
}

// ChannelsConfig sizes the token and snapshot channels.
type ChannelsConfig struct {
	TokenCapacity    int `toml:"token_capacity"`
	SnapshotCapacity int `toml:"snapshot_capacity"`
}

// LoggingConfig controls the log sink. An empty File discards logs.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PrinterConfig controls how the sequence is drawn.
type PrinterConfig struct {
	Position string `toml:"position"`
	Color    string `toml:"color"`
	Bold     bool   `toml:"bold"`
	Quit     string `toml:"quit"`
}

// HookConfig names an optional Lua script defining on_sequence.
type HookConfig struct {
	Script string `toml:"script"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Channels: ChannelsConfig{
			TokenCapacity:    DefaultCapacity,
			SnapshotCapacity: DefaultCapacity,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Printer: PrinterConfig{
			Position: "bottom-right",
			Color:    "default",
			Quit:     "q",
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field string, value any, msg string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: msg})
	}

	if c.Channels.TokenCapacity <= 0 || c.Channels.TokenCapacity > MaxCapacity {
		fail("channels.token_capacity", c.Channels.TokenCapacity,
			fmt.Sprintf("must be between 1 and %d", MaxCapacity))
	}
	if c.Channels.SnapshotCapacity <= 0 || c.Channels.SnapshotCapacity > MaxCapacity {
		fail("channels.snapshot_capacity", c.Channels.SnapshotCapacity,
			fmt.Sprintf("must be between 1 and %d", MaxCapacity))
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		fail("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	if !validPosition(c.Printer.Position) {
		fail("printer.position", c.Printer.Position, "must be one of "+strings.Join(Positions, ", "))
	}
	if _, err := backend.ParseColor(c.Printer.Color); err != nil {
		fail("printer.color", c.Printer.Color, err.Error())
	}

	return errors.Join(errs...)
}

func validPosition(p string) bool {
	for _, name := range Positions {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}
