package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHex parses "#rrggbb" or "#rgb" into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Palette parses every entry of hexes, skipping invalid ones. It never
// returns an empty slice: with nothing usable it falls back to white.
func Palette(hexes []string) []color.RGBA {
	out := make([]color.RGBA, 0, len(hexes))
	for _, h := range hexes {
		if c, err := ParseHex(h); err == nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}
	return out
}
