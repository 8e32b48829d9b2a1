// Package app wires the keyseq pipeline together and manages its
// lifecycle: terminal backend, event source, sequence accumulator and
// consumers, all sharing one cancellation context.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/keyseq/internal/config"
	"github.com/dshills/keyseq/internal/consumer"
	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/key"
	"github.com/dshills/keyseq/internal/input/source"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/renderer/backend"
	"github.com/dshills/keyseq/internal/sequence"
)

// Application owns one run of the pipeline.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	logger  *logging.Logger
	backend backend.Backend
	printer *consumer.Printer
	hook    *consumer.ScriptHook
	metrics *Metrics

	// Set while running
	acc    *sequence.Accumulator
	cancel context.CancelFunc

	running  atomic.Bool
	ran      atomic.Bool
	stopping atomic.Bool
	reason   atomic.Value // ExitReason
}

// Options configures the application.
type Options struct {
	// Config holds startup settings. Nil means config.Default().
	Config *config.Config

	// Logger receives all component logs. Nil discards them.
	Logger *logging.Logger
}

// ExitReason says why Run returned.
type ExitReason string

// Exit reasons.
const (
	ExitNone       ExitReason = ""
	ExitQuit       ExitReason = "quit"
	ExitInterrupt  ExitReason = "interrupt"
	ExitCancelled  ExitReason = "cancelled"
	ExitInputEnded ExitReason = "input ended"
	ExitError      ExitReason = "error"
)

// New validates the configuration and builds the consumers. The Lua hook
// script, if configured, is loaded here so a broken script fails startup.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{
		cfg:     cfg,
		logger:  logging.OrNull(opts.Logger),
		metrics: NewMetrics(),
	}
	app.reason.Store(ExitNone)

	if cfg.Hook.Script != "" {
		hook, err := consumer.LoadScriptHook(cfg.Hook.Script,
			consumer.WithHookLogger(app.logger))
		if err != nil {
			return nil, &InitError{Component: "hook", Err: err}
		}
		app.hook = hook
	}

	return app, nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// newPrinter builds the printer from the printer config section.
func (app *Application) newPrinter() (*consumer.Printer, error) {
	pc := app.cfg.Printer
	placement, err := consumer.ParsePlacement(pc.Position)
	if err != nil {
		return nil, err
	}
	fg, err := backend.ParseColor(pc.Color)
	if err != nil {
		return nil, err
	}
	return consumer.NewPrinter(app.backend,
		consumer.WithPlacement(placement),
		consumer.WithStyle(backend.Style{Foreground: fg, Bold: pc.Bold}),
		consumer.WithQuit(pc.Quit),
		consumer.WithPrinterLogger(app.logger),
	), nil
}

// Run starts the pipeline and blocks until it stops. Quit, Ctrl+C and
// cancellation of ctx all return nil; the terminal is restored first.
// Run may only be called once.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.backend == nil {
		app.mu.Unlock()
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if app.ran.Load() || !app.running.CompareAndSwap(false, true) {
		app.mu.Unlock()
		return ErrAlreadyRunning
	}
	app.ran.Store(true)
	defer app.running.Store(false)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.cancel = cancel
	if app.stopping.Load() {
		cancel()
	}

	printer, err := app.newPrinter()
	if err != nil {
		app.mu.Unlock()
		return &InitError{Component: "printer", Err: err}
	}
	app.printer = printer

	if err := app.backend.Init(); err != nil {
		app.mu.Unlock()
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	tokens := broadcast.New[key.Token](app.cfg.Channels.TokenCapacity,
		broadcast.WithLagHook(app.metrics.lagHook("tokens", app.logger)))
	snapshots := broadcast.New[string](app.cfg.Channels.SnapshotCapacity,
		broadcast.WithLagHook(app.metrics.lagHook("snapshots", app.logger)))

	app.acc = sequence.New(
		sequence.WithPublisher(snapshots),
		sequence.WithLogger(app.logger),
	)
	src := source.New(app.backend, tokens,
		source.WithInterruptHandler(cancel),
		source.WithLogger(app.logger),
	)
	app.mu.Unlock()

	// Subscribe everything before the first event is read.
	tokenRx := tokens.Subscribe()
	printerRx := snapshots.Subscribe()
	var hookRx *broadcast.Receiver[string]
	if app.hook != nil {
		hookRx = snapshots.Subscribe()
	}

	app.logger.Info("pipeline started (tokens=%d snapshots=%d)",
		tokens.Cap(), snapshots.Cap())

	g, gctx := errgroup.WithContext(ctx)

	// PollEvent cannot see the context; closing the backend unblocks it.
	stop := context.AfterFunc(gctx, app.backend.Shutdown)
	defer stop()

	g.Go(func() error {
		defer tokens.Close()
		return wrap("source", src.Run(gctx))
	})
	g.Go(func() error {
		return wrap("sequence", app.acc.Run(gctx, tokenRx))
	})
	g.Go(func() error {
		// The printer is the primary consumer; when it stops, so does the app.
		defer cancel()
		return wrap("printer", printer.Run(gctx, printerRx))
	})
	if hookRx != nil {
		g.Go(func() error {
			return wrap("hook", app.hook.Run(gctx, hookRx))
		})
	}

	err = g.Wait()
	app.collect(src, tokens, snapshots)

	reason := app.exitReason(parent, err)
	app.reason.Store(reason)
	app.logger.Info("pipeline stopped: %s", string(reason))
	if data, jerr := app.metrics.Snapshot().JSON(); jerr == nil {
		app.logger.Info("metrics %s", data)
	}

	switch reason {
	case ExitQuit, ExitInterrupt, ExitCancelled, ExitInputEnded:
		return nil
	}
	return err
}

// exitReason classifies the error returned by the task group.
func (app *Application) exitReason(parent context.Context, err error) ExitReason {
	switch {
	case errors.Is(err, consumer.ErrQuit):
		return ExitQuit
	case errors.Is(err, source.ErrInterrupted):
		return ExitInterrupt
	case err != nil:
		return ExitError
	case parent.Err() != nil || app.stopping.Load():
		return ExitCancelled
	}
	return ExitInputEnded
}

// collect copies component statistics into the metrics.
func (app *Application) collect(src *source.Source, tokens *broadcast.Channel[key.Token], snapshots *broadcast.Channel[string]) {
	var hookCalls, hookFailures uint64
	if app.hook != nil {
		hookCalls, hookFailures = app.hook.Calls()
	}
	app.metrics.Collect(PipelineStats{
		Source:       src.Stats(),
		Tokens:       tokens.Stats(),
		Snapshots:    snapshots.Stats(),
		Sequence:     app.acc.Stats(),
		Renders:      app.printer.Renders(),
		HookCalls:    hookCalls,
		HookFailures: hookFailures,
	})
}

// Shutdown cancels the pipeline. Run returns once every task has stopped.
// A Shutdown before Run makes Run stop immediately.
func (app *Application) Shutdown() {
	app.mu.Lock()
	app.stopping.Store(true)
	cancel := app.cancel
	app.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close releases resources held outside Run.
func (app *Application) Close() {
	if app.hook != nil {
		app.hook.Close()
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Sequence returns the current contents of the sequence buffer.
func (app *Application) Sequence(ctx context.Context) (string, error) {
	app.mu.Lock()
	acc := app.acc
	app.mu.Unlock()

	if acc == nil {
		return "", nil
	}
	return acc.String(ctx)
}

// ExitReason returns why the last Run returned.
func (app *Application) ExitReason() ExitReason {
	return app.reason.Load().(ExitReason)
}

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Config returns the configuration in use.
func (app *Application) Config() *config.Config {
	return app.cfg
}

func wrap(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewComponentError(component, "run", err)
}

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
