// Package theme holds the immutable design tokens for the builder home page.
//
// The central piece is the domain table: a total mapping from the closed
// Domain enum to its display Record. Everything else in the package is static
// data (typography, spacing, radius, confidence levels) or small helpers that
// render those tokens for a concrete surface.
//
// Integration example:
//
//	rec := theme.Lookup(theme.Automotive)
//	hex, err := theme.TerminalColor(rec.Accent)
//	if err != nil {
//		return err
//	}
//	title := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(rec.Name)
package theme
