package backend

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]rune
	styles        [][]Style
	cursorX       int
	cursorY       int
	cursorVisible bool
	shows         int
	clears        int
	initialized   bool
	closed        bool
	events        chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
	b.reset()
	return b
}

func (b *NullBackend) reset() {
	b.cells = make([][]rune, b.height)
	b.styles = make([][]Style, b.height)
	for y := range b.cells {
		b.cells[y] = []rune(strings.Repeat(" ", b.width))
		b.styles[y] = make([]Style, b.width)
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	return nil
}

// Shutdown closes the event queue so PollEvent reports EventClosed.
func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.initialized = false
	close(b.events)
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.width <= 0 || b.height <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return b.width, b.height
}

func (b *NullBackend) DrawString(x, y int, s string, style Style) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	col := x
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if y >= 0 && y < b.height && col >= 0 && col < b.width {
			b.cells[y][col] = g.Runes()[0]
			b.styles[y][col] = style
		}
		col += g.Width()
	}
	return col - x
}

func (b *NullBackend) ClearLine(y int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= b.height {
		return
	}
	for x := range b.cells[y] {
		b.cells[y][x] = ' '
		b.styles[y][x] = DefaultStyle
	}
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears++
	b.reset()
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows++
}

func (b *NullBackend) ShowCursor(x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	ev, ok := <-b.events
	if !ok {
		return Event{Type: EventClosed}
	}
	return ev
}

func (b *NullBackend) PostEvent(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// IsInitialized reports whether Init was called and Shutdown was not.
func (b *NullBackend) IsInitialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Line returns row y with trailing blanks removed.
func (b *NullBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= b.height {
		return ""
	}
	return strings.TrimRight(string(b.cells[y]), " ")
}

// StyleAt returns the style of the cell at (x, y).
func (b *NullBackend) StyleAt(x, y int) Style {
	b.mu.Lock()
	defer b.mu.Unlock()

	if y < 0 || y >= b.height || x < 0 || x >= b.width {
		return DefaultStyle
	}
	return b.styles[y][x]
}

// ShowCount returns how many times Show was called.
func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

// ClearCount returns how many times Clear was called.
func (b *NullBackend) ClearCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

// CursorPosition returns the current cursor position for testing.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorX, b.cursorY, b.cursorVisible
}
