package tui

import (
	"github.com/charmbracelet/lipgloss"

	"builder-platform/internal/theme"
)

type palette struct {
	accent string
	fg     string
	muted  string
	border string
}

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	card    lipgloss.Style
	heading lipgloss.Style
	accent  lipgloss.Style
	pill    lipgloss.Style
	active  lipgloss.Style
	cursor  lipgloss.Style
	swatch  lipgloss.Style
	code    lipgloss.Style
	toast   lipgloss.Style
}

// newStyles derives every style from the accent and surface colours. Empty
// colours leave the attribute unset so monochrome terminals get plain text.
func newStyles(r *lipgloss.Renderer, p palette) styles {
	fg := func(s lipgloss.Style, c string) lipgloss.Style {
		if c == "" {
			return s
		}
		return s.Foreground(lipgloss.Color(c))
	}
	borderFg := func(s lipgloss.Style) lipgloss.Style {
		if p.border == "" {
			return s
		}
		return s.BorderForeground(lipgloss.Color(p.border))
	}

	s := styles{
		title:   fg(r.NewStyle().Bold(true), p.accent),
		muted:   fg(r.NewStyle(), p.muted),
		card:    borderFg(r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)),
		heading: fg(r.NewStyle().Bold(true), p.fg),
		accent:  fg(r.NewStyle().Bold(true), p.accent),
		pill:    borderFg(r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)),
		cursor:  fg(r.NewStyle().Bold(true), p.accent),
		code:    fg(r.NewStyle(), p.fg),
		toast:   fg(r.NewStyle().Bold(true).Padding(0, 1), p.accent),
	}

	s.active = r.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1).Bold(true)
	s.swatch = r.NewStyle()
	if p.accent != "" {
		s.active = s.active.BorderForeground(lipgloss.Color(p.accent)).Foreground(lipgloss.Color(p.accent))
		s.swatch = s.swatch.Background(lipgloss.Color(p.accent))
		s.toast = s.toast.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(p.accent))
	}
	return s
}

// surfacePalette converts the scheme surface to terminal hex colours.
func surfacePalette(scheme theme.ColorScheme, accent string) palette {
	surface := theme.SchemeSurface(scheme)
	return palette{
		accent: accent,
		fg:     hexOrEmpty(surface.Foreground),
		muted:  hexOrEmpty(surface.Muted),
		border: hexOrEmpty(surface.Border),
	}
}

func hexOrEmpty(color string) string {
	hex, err := theme.TerminalColor(color)
	if err != nil {
		return ""
	}
	return hex
}
