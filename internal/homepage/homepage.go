// Package homepage holds the copy of the home page shared by the terminal and
// HTML renderings.
package homepage

import (
	"fmt"
	"strings"

	"builder-platform/internal/theme"
)

const (
	Title             = "The Builder Platform"
	Subtitle          = "Domain-agnostic expert content creation with knowledge compounding"
	SelectTitle       = "Select Your Domain"
	SelectDescription = "Choose your area of expertise. The UI adapts to your domain."
	CurrentLabel      = "Current Domain"
	AccentLabel       = "Accent Color:"
	TypesTitle        = "Typed Selection"
	StackTitle        = "Tech Stack"
)

// StackEntry is one labelled cell of the tech stack card.
type StackEntry struct {
	Label string
	Value string
}

var stack = []StackEntry{
	{"Server", "Go + wish (SSH) + net/http"},
	{"Language", "Go"},
	{"Terminal UI", "bubbletea + lipgloss"},
	{"Database", "SQLite (modernc.org/sqlite)"},
	{"UI Font", "Inter"},
	{"Reading Font", "Merriweather"},
}

// TechStack returns a copy of the stack card entries.
func TechStack() []StackEntry {
	return append([]StackEntry(nil), stack...)
}

// Toast is the notification shown after a domain button is pressed.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DomainChanged describes the selection that just became active.
func DomainChanged(r theme.Record) Toast {
	return Toast{
		Title:       "Domain changed to " + r.Name,
		Description: r.Description,
	}
}

// TypesDemo returns the code sample lines of the typed selection card for d.
func TypesDemo(d theme.Domain) []string {
	return []string{
		"// Closed enum",
		fmt.Sprintf("domain := theme.%s", identifier(d)),
		"// ParseDomain rejects anything outside the four domains",
		"",
		"// Total lookup",
		"record := theme.Lookup(domain)",
		fmt.Sprintf("// record.Accent == %q", theme.Lookup(d).Accent),
	}
}

func identifier(d theme.Domain) string {
	name := d.String()
	if name == "" {
		return name
	}
	return name[:1] + strings.ToLower(name[1:])
}
