package source

import (
	"github.com/dshills/keyseq/internal/input/key"
	"github.com/dshills/keyseq/internal/renderer/backend"
)

// ToKeyEvent converts a backend key event to a key.Event.
func ToKeyEvent(ev backend.Event) key.Event {
	mods := key.ModNone
	if ev.Mod.Has(backend.ModCtrl) {
		mods = mods.With(key.ModCtrl)
	}
	if ev.Mod.Has(backend.ModAlt) {
		mods = mods.With(key.ModAlt)
	}
	if ev.Mod.Has(backend.ModShift) {
		mods = mods.With(key.ModShift)
	}
	if ev.Mod.Has(backend.ModMeta) {
		mods = mods.With(key.ModMeta)
	}

	k := mapBackendKey(ev.Key)
	if k != key.KeyRune {
		return key.NewSpecialEvent(k, mods)
	}
	return key.NewRuneEvent(ev.Rune, mods)
}

// FromKeyEvent converts a key.Event back to a backend event, for posting
// synthetic input.
func FromKeyEvent(ev key.Event) backend.Event {
	var mod backend.ModMask
	if ev.Modifiers.Has(key.ModCtrl) {
		mod |= backend.ModCtrl
	}
	if ev.Modifiers.Has(key.ModAlt) {
		mod |= backend.ModAlt
	}
	if ev.Modifiers.Has(key.ModShift) {
		mod |= backend.ModShift
	}
	if ev.Modifiers.Has(key.ModMeta) {
		mod |= backend.ModMeta
	}

	out := backend.Event{Type: backend.EventKey, Mod: mod, Rune: ev.Rune}
	for bk, kk := range backendKeys {
		if kk == ev.Key {
			out.Key = bk
			return out
		}
	}
	return out
}

// backendKeys maps backend keys to key.Key values.
var backendKeys = map[backend.Key]key.Key{
	backend.KeyRune:      key.KeyRune,
	backend.KeyEscape:    key.KeyEscape,
	backend.KeyEnter:     key.KeyEnter,
	backend.KeyTab:       key.KeyTab,
	backend.KeyBackspace: key.KeyBackspace,
	backend.KeyDelete:    key.KeyDelete,
	backend.KeyInsert:    key.KeyInsert,
	backend.KeyHome:      key.KeyHome,
	backend.KeyEnd:       key.KeyEnd,
	backend.KeyPageUp:    key.KeyPageUp,
	backend.KeyPageDown:  key.KeyPageDown,
	backend.KeyUp:        key.KeyUp,
	backend.KeyDown:      key.KeyDown,
	backend.KeyLeft:      key.KeyLeft,
	backend.KeyRight:     key.KeyRight,
	backend.KeyF1:        key.KeyF1,
	backend.KeyF2:        key.KeyF2,
	backend.KeyF3:        key.KeyF3,
	backend.KeyF4:        key.KeyF4,
	backend.KeyF5:        key.KeyF5,
	backend.KeyF6:        key.KeyF6,
	backend.KeyF7:        key.KeyF7,
	backend.KeyF8:        key.KeyF8,
	backend.KeyF9:        key.KeyF9,
	backend.KeyF10:       key.KeyF10,
	backend.KeyF11:       key.KeyF11,
	backend.KeyF12:       key.KeyF12,
}

// mapBackendKey maps a backend.Key to a key.Key.
func mapBackendKey(bk backend.Key) key.Key {
	if k, ok := backendKeys[bk]; ok {
		return k
	}
	return key.KeyNone
}
