package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnsupportedColor is returned when an accent string cannot be converted
// for a terminal.
var ErrUnsupportedColor = errors.New("unsupported color")

var oklchPattern = regexp.MustCompile(`^oklch\(\s*([0-9.]+)(%?)\s+([0-9.]+)\s+([0-9.]+)(?:deg)?\s*(?:/\s*[0-9.%]+\s*)?\)$`)

// TerminalColor converts an accent string into #rrggbb for terminal renderers.
// It understands oklch(L C H) and hex notation; out-of-gamut colours are
// clamped into sRGB.
func TerminalColor(accent string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(accent))
	if strings.HasPrefix(value, "#") {
		c, err := colorful.Hex(value)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedColor, accent)
		}
		return c.Hex(), nil
	}

	m := oklchPattern.FindStringSubmatch(value)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedColor, accent)
	}

	l, errL := strconv.ParseFloat(m[1], 64)
	c, errC := strconv.ParseFloat(m[3], 64)
	h, errH := strconv.ParseFloat(m[4], 64)
	if err := errors.Join(errL, errC, errH); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupportedColor, accent, err)
	}
	if m[2] == "%" {
		l /= 100
	}

	return colorful.OkLch(l, c, h).Clamped().Hex(), nil
}
