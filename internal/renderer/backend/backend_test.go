package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestNullBackendInitShutdown(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !b.IsInitialized() {
		t.Error("expected backend to be initialized")
	}

	b.Shutdown()
	b.Shutdown() // idempotent

	if b.IsInitialized() {
		t.Error("expected backend to be shut down")
	}
	if ev := b.PollEvent(); ev.Type != EventClosed {
		t.Errorf("PollEvent() after Shutdown = %v, want EventClosed", ev.Type)
	}

	// Posting after shutdown must not panic
	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'a'})
}

func TestNullBackendSizeFallback(t *testing.T) {
	b := NewNullBackend(0, 0)
	w, h := b.Size()
	if w != DefaultWidth || h != DefaultHeight {
		t.Errorf("Size() = (%d, %d), want (%d, %d)", w, h, DefaultWidth, DefaultHeight)
	}
}

func TestNullBackendDrawString(t *testing.T) {
	b := NewNullBackend(10, 3)
	red := Style{Foreground: Color{R: 255, Set: true}}

	if n := b.DrawString(7, 2, "abcd", red); n != 4 {
		t.Errorf("DrawString() width = %d, want 4", n)
	}
	if got := b.Line(2); got != "       abc" {
		t.Errorf("Line(2) = %q, want clipped text", got)
	}
	if got := b.StyleAt(7, 2); got != red {
		t.Errorf("StyleAt(7, 2) = %+v, want %+v", got, red)
	}

	b.ClearLine(2)
	if got := b.Line(2); got != "" {
		t.Errorf("Line(2) after ClearLine = %q, want empty", got)
	}
}

func TestNullBackendWideRunes(t *testing.T) {
	b := NewNullBackend(10, 1)
	if n := b.DrawString(0, 0, "日本", DefaultStyle); n != 4 {
		t.Errorf("DrawString() width = %d, want 4", n)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(80, 24)
	want := Event{Type: EventKey, Key: KeyEscape}
	b.PostEvent(want)

	if got := b.PollEvent(); got != want {
		t.Errorf("PollEvent() = %+v, want %+v", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"", ColorDefault, false},
		{"default", ColorDefault, false},
		{"#ff8000", Color{R: 255, G: 128, B: 0, Set: true}, false},
		{"#fff", Color{R: 255, G: 255, B: 255, Set: true}, false},
		{"orange", ColorDefault, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if s := (Color{R: 1, G: 2, B: 3, Set: true}).String(); s != "#010203" {
		t.Errorf("Color.String() = %q", s)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		key      tcell.Key
		r        rune
		wantKey  Key
		wantRune rune
		wantMod  ModMask
	}{
		{tcell.KeyRune, 'x', KeyRune, 'x', ModNone},
		{tcell.KeyEscape, 0, KeyEscape, 0, ModNone},
		{tcell.KeyTab, 0, KeyTab, 0, ModNone},
		{tcell.KeyBackspace2, 0, KeyBackspace, 0, ModNone},
		{tcell.KeyF3, 0, KeyF3, 0, ModNone},
		{tcell.KeyCtrlC, 0, KeyRune, 'c', ModCtrl},
		{tcell.KeyUp, 0, KeyUp, 0, ModNone},
	}

	for _, tt := range tests {
		k, r, mod := convertKey(tt.key, tt.r, ModNone)
		if k != tt.wantKey || r != tt.wantRune || mod != tt.wantMod {
			t.Errorf("convertKey(%v) = (%v, %q, %v), want (%v, %q, %v)",
				tt.key, k, r, mod, tt.wantKey, tt.wantRune, tt.wantMod)
		}
	}
}
