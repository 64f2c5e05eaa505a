package theme

import (
	"errors"
	"fmt"
	"strings"
)

// ColorScheme selects the light or dark surface palette.
type ColorScheme string

const (
	SchemeDark   ColorScheme = "dark"
	SchemeLight  ColorScheme = "light"
	SchemeSystem ColorScheme = "system"
)

// DefaultScheme matches the page shell default.
const DefaultScheme = SchemeDark

// ErrUnknownColorScheme is returned when text does not name a colour scheme.
var ErrUnknownColorScheme = errors.New("unknown color scheme")

// Surface holds the neutral colours that sit behind the domain accent.
type Surface struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Muted      string `json:"muted"`
	Border     string `json:"border"`
}

var surfaces = map[ColorScheme]Surface{
	SchemeDark: {
		Background: "oklch(0.145 0 0)",
		Foreground: "oklch(0.985 0 0)",
		Muted:      "oklch(0.708 0 0)",
		Border:     "oklch(0.269 0 0)",
	},
	SchemeLight: {
		Background: "oklch(1 0 0)",
		Foreground: "oklch(0.145 0 0)",
		Muted:      "oklch(0.556 0 0)",
		Border:     "oklch(0.922 0 0)",
	},
}

// ParseColorScheme accepts dark, light or system (case-insensitive). Empty
// input yields DefaultScheme.
func ParseColorScheme(raw string) (ColorScheme, error) {
	switch ColorScheme(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return DefaultScheme, nil
	case SchemeDark:
		return SchemeDark, nil
	case SchemeLight:
		return SchemeLight, nil
	case SchemeSystem:
		return SchemeSystem, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColorScheme, raw)
}

// Resolve turns SchemeSystem into a concrete scheme using the client
// preference. Concrete schemes are returned unchanged.
func (s ColorScheme) Resolve(prefersDark bool) ColorScheme {
	if s != SchemeSystem {
		return s
	}
	if prefersDark {
		return SchemeDark
	}
	return SchemeLight
}

// Toggle flips between dark and light. System toggles to light.
func (s ColorScheme) Toggle() ColorScheme {
	if s == SchemeLight {
		return SchemeDark
	}
	return SchemeLight
}

// SchemeSurface returns the surface palette for a concrete scheme; system is
// resolved as dark.
func SchemeSurface(s ColorScheme) Surface {
	if surface, ok := surfaces[s.Resolve(true)]; ok {
		return surface
	}
	return surfaces[DefaultScheme]
}
