package key

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Vim-style: "<Esc>", "<Tab>", "<BS>", "<Space>", "<C-c>", "<A-x>", "<F1>"
func Parse(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	r, size := utf8.DecodeRuneInString(spec)
	if r == utf8.RuneError || size != len(spec) {
		return Event{}, ErrInvalidSpec
	}
	return NewRuneEvent(r, ModNone), nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic("key: " + err.Error() + ": " + spec)
	}
	return ev
}

// ParseAll parses a whitespace-free run of specifications such as "ab<Esc>c".
func ParseAll(specs string) ([]Event, error) {
	var events []Event
	for specs != "" {
		n := 0
		if specs[0] == '<' {
			if end := strings.IndexByte(specs, '>'); end > 1 {
				n = end + 1
			}
		}
		if n == 0 {
			_, n = utf8.DecodeRuneInString(specs)
		}
		ev, err := Parse(specs[:n])
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
		specs = specs[n:]
	}
	return events, nil
}

// parseVimStyle parses the inside of Vim notation like "C-s", "CR", "Esc".
func parseVimStyle(inner string) (Event, error) {
	parts := strings.Split(inner, "-")
	name := parts[len(parts)-1]
	if name == "" {
		// "<C-->" style: the key itself is a hyphen
		if len(parts) < 2 {
			return Event{}, ErrInvalidSpec
		}
		name = "-"
		parts = parts[:len(parts)-2]
	} else {
		parts = parts[:len(parts)-1]
	}

	var mods Modifier
	for _, p := range parts {
		m, ok := modifierNameMap[strings.ToLower(p)]
		if !ok {
			return Event{}, ErrInvalidSpec
		}
		mods = mods.With(m)
	}

	if strings.EqualFold(name, "space") {
		return NewRuneEvent(' ', mods), nil
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return NewRuneEvent(r, mods), nil
	}
	k := KeyFromName(name)
	if k == KeyNone {
		return Event{}, ErrInvalidSpec
	}
	return NewSpecialEvent(k, mods), nil
}
