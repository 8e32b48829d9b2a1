// Package backend provides the terminal abstraction used by the input
// pipeline and its consumers.
package backend

// Default dimensions used when the terminal cannot report its size.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventPaste
	EventFocus

	// EventClosed is returned once the backend has been shut down.
	// No further events will follow.
	EventClosed
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for special keys. Control-letter combinations are reported
// as KeyRune with the lowercase letter and ModCtrl.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Backend defines the interface for terminal backends.
type Backend interface {
	// Init puts the terminal into raw mode.
	// Must be called before any other methods.
	Init() error

	// Shutdown restores the terminal to its original mode. It is safe to
	// call more than once. After Shutdown, PollEvent returns EventClosed.
	Shutdown()

	// Size returns the terminal dimensions, falling back to
	// DefaultWidth x DefaultHeight when the terminal reports nothing usable.
	Size() (width, height int)

	// DrawString draws s starting at (x, y) and returns the number of
	// columns it occupied. Cells outside the terminal are skipped.
	DrawString(x, y int, s string, style Style) int

	// ClearLine blanks row y.
	ClearLine(y int)

	// Clear clears the entire screen with the default style.
	Clear()

	// Show synchronizes the internal buffer with the actual display.
	Show()

	// ShowCursor positions and displays the cursor.
	ShowCursor(x, y int)

	// HideCursor hides the cursor.
	HideCursor()

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}
