package key

// ctrlC is the ASCII ETX byte that some terminals report for Ctrl+C
// without a separate modifier.
const ctrlC = 0x03

// IsInterrupt reports whether ev is the interrupt combination (Ctrl+C).
func IsInterrupt(ev Event) bool {
	if ev.Key != KeyRune {
		return false
	}
	if ev.Rune == ctrlC {
		return true
	}
	return ev.Modifiers.HasCtrl() && (ev.Rune == 'c' || ev.Rune == 'C')
}

// specialKeys maps raw keys to the special tokens they classify as.
var specialKeys = map[Key]Special{
	KeyEscape:    SpecialEsc,
	KeyTab:       SpecialTab,
	KeyBackspace: SpecialBackspace,
}

// Classify converts a raw key event into a Token.
// Unmodified printable characters become Alphanumeric tokens, and Escape,
// Tab and Backspace become Special tokens. Everything else, including the
// interrupt combination, reports false and must be dropped by the caller.
func Classify(ev Event) (Token, bool) {
	if IsInterrupt(ev) {
		return Token{}, false
	}

	if ev.Key == KeyRune {
		if ev.IsChar() && !ev.IsModified() {
			return Alphanumeric(ev.Rune), true
		}
		return Token{}, false
	}

	if ev.Modifiers.Has(ModCtrl | ModAlt | ModMeta) {
		return Token{}, false
	}
	if s, ok := specialKeys[ev.Key]; ok {
		return NewSpecial(s), true
	}
	return Token{}, false
}
