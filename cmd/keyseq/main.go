// Package main is the entry point for keyseq.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/keyseq/internal/app"
	"github.com/dshills/keyseq/internal/config"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

// flags holds command-line values. Only flags the user set override the
// config file.
type flags struct {
	configPath string
	logLevel   string
	logFile    string
	position   string
	color      string
	hook       string
	set        map[string]bool
}

func run() int {
	f := parseFlags()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration:\n%v\n", err)
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: keyseq must be run in a terminal")
		return 1
	}

	logger, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	application, err := app.New(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	terminal, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(terminal); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		if sig, ok := <-signals; ok {
			logger.Info("received %s", sig)
			application.Shutdown()
		}
	}()

	// Quit, Ctrl+C and signals all end in a nil error
	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger opens the configured log file. The terminal is in raw mode
// while running, so without a file logs are discarded.
func newLogger(lc config.LoggingConfig) (*logging.Logger, func(), error) {
	level, _ := logging.ParseLevel(lc.Level)
	if lc.File == "" {
		return logging.Null(), func() {}, nil
	}

	file, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Output = file
	return logging.New(cfg), func() { _ = file.Close() }, nil
}

// apply copies explicitly set flags over cfg.
func (f *flags) apply(cfg *config.Config) {
	if f.set["log-level"] {
		cfg.Logging.Level = f.logLevel
	}
	if f.set["log-file"] {
		cfg.Logging.File = f.logFile
	}
	if f.set["position"] {
		cfg.Printer.Position = f.position
	}
	if f.set["color"] {
		cfg.Printer.Color = f.color
	}
	if f.set["hook"] {
		cfg.Hook.Script = f.hook
	}
}

func parseFlags() *flags {
	f := &flags{set: make(map[string]bool)}
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&f.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&f.position, "position", "bottom-right", "Where to draw the sequence (bottom-right, top-left)")
	flag.StringVar(&f.color, "color", "default", "Sequence colour as #rrggbb")
	flag.StringVar(&f.hook, "hook", "", "Lua script defining on_sequence(s)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "keyseq - show the pending vim-style key sequence\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keyseq [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  <Esc>      clear the sequence\n")
		fmt.Fprintf(os.Stderr, "  <BS>       drop the last character\n")
		fmt.Fprintf(os.Stderr, "  <Esc>q     quit\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+C     quit immediately\n")
	}

	flag.Parse()
	flag.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("keyseq %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return f
}
