package key

import "fmt"

// Special enumerates the named special keys that survive classification.
type Special uint8

const (
	// specialInvalid is the zero value and never appears in a valid Token.
	specialInvalid Special = iota

	// SpecialEsc resets the pending sequence.
	SpecialEsc

	// SpecialTab is the Tab key.
	SpecialTab

	// SpecialBackspace is the Backspace key.
	SpecialBackspace

	specialCount
)

var specialNames = [specialCount]string{
	SpecialEsc:       "esc",
	SpecialTab:       "tab",
	SpecialBackspace: "backspace",
}

// Specials returns every valid Special in declaration order.
func Specials() []Special {
	out := make([]Special, 0, specialCount-1)
	for s := specialInvalid + 1; s < specialCount; s++ {
		out = append(out, s)
	}
	return out
}

// String returns the stable name of the special key ("esc", "tab", "backspace").
func (s Special) String() string {
	if s.Valid() {
		return specialNames[s]
	}
	return fmt.Sprintf("Special(%d)", uint8(s))
}

// Valid reports whether s is one of the declared special keys.
func (s Special) Valid() bool {
	return s > specialInvalid && s < specialCount
}

// ParseSpecial returns the Special with the given stable name.
func ParseSpecial(name string) (Special, bool) {
	for s := specialInvalid + 1; s < specialCount; s++ {
		if specialNames[s] == name {
			return s, true
		}
	}
	return specialInvalid, false
}

// TokenKind discriminates the two Token variants.
type TokenKind uint8

const (
	// KindInvalid marks the zero Token.
	KindInvalid TokenKind = iota

	// KindAlphanumeric carries a character.
	KindAlphanumeric

	// KindSpecial carries a Special.
	KindSpecial
)

// Token is the classified form of a key event. It holds either a character
// or a Special, never both. Construct tokens with Alphanumeric or NewSpecial.
type Token struct {
	kind    TokenKind
	char    rune
	special Special
}

// Alphanumeric returns a character token.
func Alphanumeric(r rune) Token {
	return Token{kind: KindAlphanumeric, char: r}
}

// NewSpecial returns a special-key token. It panics if s is not valid.
func NewSpecial(s Special) Token {
	if !s.Valid() {
		panic(fmt.Sprintf("key: invalid special %d", uint8(s)))
	}
	return Token{kind: KindSpecial, special: s}
}

// Kind returns the token variant.
func (t Token) Kind() TokenKind {
	return t.kind
}

// Valid reports whether the token was built by a constructor.
func (t Token) Valid() bool {
	return t.kind != KindInvalid
}

// Char returns the character of an alphanumeric token.
func (t Token) Char() (rune, bool) {
	return t.char, t.kind == KindAlphanumeric
}

// Special returns the special key of a special token.
func (t Token) Special() (Special, bool) {
	return t.special, t.kind == KindSpecial
}

// String renders the token in Vim notation: "a" or "<esc>".
func (t Token) String() string {
	switch t.kind {
	case KindAlphanumeric:
		return string(t.char)
	case KindSpecial:
		return "<" + t.special.String() + ">"
	default:
		return "<invalid>"
	}
}
