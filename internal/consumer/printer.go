package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rivo/uniseg"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/renderer/backend"
	"github.com/dshills/keyseq/internal/sequence"
)

// DefaultQuit is the snapshot that ends the Printer loop.
const DefaultQuit = "q"

// ErrQuit is returned by Printer.Run when the quit sentinel arrives.
var ErrQuit = errors.New("quit requested")

// Placement selects where the Printer draws.
type Placement int

const (
	// PlacementBottomRight right-aligns the sequence on the last row.
	PlacementBottomRight Placement = iota
	// PlacementTopLeft clears the screen and draws at the origin.
	PlacementTopLeft
)

var placementNames = map[Placement]string{
	PlacementBottomRight: "bottom-right",
	PlacementTopLeft:     "top-left",
}

// String returns the config name of the placement.
func (p Placement) String() string {
	if name, ok := placementNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Placement(%d)", int(p))
}

// ParsePlacement parses "bottom-right" or "top-left".
func ParsePlacement(s string) (Placement, error) {
	for p, name := range placementNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown placement %q", s)
}

// Printer renders each snapshot on the terminal.
type Printer struct {
	backend   backend.Backend
	placement Placement
	style     backend.Style
	quit      string
	logger    *logging.Logger

	renders atomic.Uint64
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithPlacement sets where the sequence is drawn.
func WithPlacement(p Placement) PrinterOption {
	return func(pr *Printer) {
		pr.placement = p
	}
}

// WithStyle sets the draw style.
func WithStyle(s backend.Style) PrinterOption {
	return func(pr *Printer) {
		pr.style = s
	}
}

// WithQuit sets the quit sentinel. An empty sentinel disables quitting.
func WithQuit(s string) PrinterOption {
	return func(pr *Printer) {
		pr.quit = s
	}
}

// WithPrinterLogger sets the logger.
func WithPrinterLogger(l *logging.Logger) PrinterOption {
	return func(pr *Printer) {
		pr.logger = l
	}
}

// NewPrinter creates a Printer drawing on b.
func NewPrinter(b backend.Backend, opts ...PrinterOption) *Printer {
	p := &Printer{
		backend: b,
		style:   backend.DefaultStyle,
		quit:    DefaultQuit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.OrNull(p.logger).WithComponent("printer")
	return p
}

// Run renders snapshots from rx until the subscription ends or the quit
// sentinel arrives.
func (p *Printer) Run(ctx context.Context, rx *broadcast.Receiver[string]) error {
	defer rx.Close()

	for {
		s, ok, reason := sequence.Recv(ctx, rx)
		if !ok {
			logEnd(p.logger, reason)
			return nil
		}
		if p.quit != "" && s == p.quit {
			p.logger.Info("quit sentinel received")
			return ErrQuit
		}
		p.Render(s)
	}
}

// Render draws s at the configured placement.
func (p *Printer) Render(s string) {
	switch p.placement {
	case PlacementTopLeft:
		// Reads like a prompt: the cursor follows the sequence.
		p.backend.Clear()
		n := p.backend.DrawString(0, 0, s, p.style)
		p.backend.ShowCursor(n, 0)
	default:
		// A corner overlay; the cursor must not jump to it.
		w, h := p.backend.Size()
		x := max(w-uniseg.StringWidth(s), 0)
		y := h - 1
		p.backend.HideCursor()
		p.backend.ClearLine(y)
		p.backend.DrawString(x, y, s, p.style)
	}
	p.backend.Show()
	p.renders.Add(1)
}

// Renders returns the number of snapshots drawn.
func (p *Printer) Renders() uint64 {
	return p.renders.Load()
}

// logEnd records why a subscription ended.
func logEnd(l *logging.Logger, reason error) {
	var lag *broadcast.LagError
	switch {
	case errors.As(reason, &lag):
		l.Warn("subscription lagged by %d snapshots, stopping", lag.Skipped)
	case errors.Is(reason, broadcast.ErrClosed):
		l.Debug("snapshot channel closed")
	case errors.Is(reason, context.Canceled), errors.Is(reason, context.DeadlineExceeded):
		l.Debug("stopped: %v", reason)
	default:
		l.Error("receive failed: %v", reason)
	}
}
