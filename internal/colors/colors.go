package colors

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/satishgoda/watchtower/internal/config"
	"github.com/satishgoda/watchtower/internal/services"
)

// Color is an RGBA color with channels in [0, 1], the layout the timeline
// renderer consumes directly.
type Color [4]float32

// Hex renders the color as #rrggbb, or #rrggbbaa when not fully opaque.
func (c Color) Hex() string {
	channel := func(v float32) int {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 255
		default:
			return int(v*255 + 0.5)
		}
	}
	out := fmt.Sprintf("#%02x%02x%02x", channel(c[0]), channel(c[1]), channel(c[2]))
	if c[3] < 1 {
		out += fmt.Sprintf("%02x", channel(c[3]))
	}
	return out
}

// IsZero reports whether no color has been assigned.
func (c Color) IsZero() bool {
	return c == Color{}
}

// MarshalJSON encodes the color as a four-element array.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float32(c))
}

// UnmarshalJSON accepts either a four-element array or a hex string.
func (c *Color) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = Color{}
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := ParseHex(raw)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var channels [4]float32
	if err := json.Unmarshal(data, &channels); err != nil {
		return services.Wrap(services.ErrMalformedData, "", "decode color", "", err)
	}
	*c = Color(channels)
	return nil
}

// ParseHex converts #rgb, #rrggbb, or #rrggbbaa (leading # optional) into a Color.
func ParseHex(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, services.Wrap(services.ErrMalformedData, "", "parse color", fmt.Sprintf("%q is not a hex color", value), nil)
	}
	var out Color
	for i := 0; i < 4; i++ {
		n, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, services.Wrap(services.ErrMalformedData, "", "parse color", fmt.Sprintf("%q is not a hex color", value), err)
		}
		out[i] = float32(n) / 255
	}
	return out, nil
}

// Palette is an ordered list of colors used for index-based assignment.
type Palette []Color

// DefaultPalette returns the built-in eight-color palette.
func DefaultPalette() Palette {
	palette, err := ParsePalette(config.DefaultPalette)
	if err != nil {
		panic(err)
	}
	return palette
}

// ParsePalette converts hex strings into a Palette, preserving order.
func ParsePalette(values []string) (Palette, error) {
	palette := make(Palette, 0, len(values))
	for _, value := range values {
		color, err := ParseHex(value)
		if err != nil {
			return nil, err
		}
		palette = append(palette, color)
	}
	return palette, nil
}

// At returns palette[index mod len]. An empty palette falls back to the default.
func (p Palette) At(index int) Color {
	if len(p) == 0 {
		return DefaultPalette().At(index)
	}
	if index < 0 {
		index = -index
	}
	return p[index%len(p)]
}

// Assign walks items in arrival order and hands each one the palette color for
// its index. Re-running on the same order yields identical colors.
func Assign[T any](items []T, palette Palette, set func(*T, Color)) {
	for i := range items {
		set(&items[i], palette.At(i))
	}
}
