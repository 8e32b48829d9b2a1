package sequence

import "github.com/dshills/keyseq/internal/input/key"

// outcome describes what a transition did to the buffer.
type outcome int

const (
	// changed means a snapshot must be emitted.
	changed outcome = iota
	// unchanged means the token was valid but had nothing to act on.
	unchanged
	// ignored means the token has no meaning for the sequence.
	ignored
)

// transition applies a special key to the buffer.
type transition func(buf []rune) ([]rune, outcome)

// specialTransitions holds one entry per key.Special.
var specialTransitions = map[key.Special]transition{
	key.SpecialEsc:       clearBuffer,
	key.SpecialBackspace: dropLast,
	key.SpecialTab:       ignore,
}

func clearBuffer(buf []rune) ([]rune, outcome) {
	return buf[:0], changed
}

func dropLast(buf []rune) ([]rune, outcome) {
	if len(buf) == 0 {
		return buf, unchanged
	}
	return buf[:len(buf)-1], changed
}

func ignore(buf []rune) ([]rune, outcome) {
	return buf, ignored
}

// apply runs tok against buf.
func apply(buf []rune, tok key.Token) ([]rune, outcome) {
	if r, ok := tok.Char(); ok {
		return append(buf, r), changed
	}
	if s, ok := tok.Special(); ok {
		if fn, ok := specialTransitions[s]; ok {
			return fn(buf)
		}
	}
	return buf, ignored
}
