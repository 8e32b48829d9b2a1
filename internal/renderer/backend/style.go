package backend

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit colour. The zero value means the terminal default.
type Color struct {
	R, G, B uint8
	Set     bool
}

// ColorDefault is the terminal's default colour.
var ColorDefault = Color{}

// ParseColor parses "#rrggbb" (or "#rgb") into a Color.
// The empty string and "default" yield ColorDefault.
func ParseColor(s string) (Color, error) {
	if s == "" || s == "default" {
		return ColorDefault, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return ColorDefault, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b, Set: true}, nil
}

// String returns the colour as "#rrggbb", or "default".
func (c Color) String() string {
	if !c.Set {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style describes how drawn text looks.
type Style struct {
	Foreground Color
	Background Color
	Bold       bool
	Reverse    bool
}

// DefaultStyle uses the terminal's default colours and no attributes.
var DefaultStyle = Style{}
