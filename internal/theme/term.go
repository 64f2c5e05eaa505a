package theme

import (
	"strings"
	"sync"
)

// TermProfile describes terminal rendering capabilities derived from TERM.
type TermProfile struct {
	Colors    int
	TrueColor bool
	IsTTY     bool
}

// TermProfileDetector maps a TERM value to a terminal capability profile.
type TermProfileDetector func(term string) TermProfile

// RenderOptions controls how an accent is painted on a terminal.
type RenderOptions struct {
	Term       string
	ForceColor bool
	ForceMono  bool
}

// TerminalAccent is a domain accent resolved for one terminal.
type TerminalAccent struct {
	// Hex is the sRGB approximation of the accent; empty when Color is false.
	Hex     string
	Color   bool
	Profile TermProfile
}

var (
	termProfileCache sync.Map
	knownProfiles    = map[string]TermProfile{
		"dumb":           {Colors: 0, TrueColor: false, IsTTY: false},
		"ansi":           {Colors: 8, TrueColor: false, IsTTY: true},
		"linux":          {Colors: 16, TrueColor: false, IsTTY: true},
		"xterm":          {Colors: 16, TrueColor: false, IsTTY: true},
		"xterm-256color": {Colors: 256, TrueColor: false, IsTTY: true},
		"screen":         {Colors: 8, TrueColor: false, IsTTY: true},
		"tmux":           {Colors: 256, TrueColor: false, IsTTY: true},
		"vt100":          {Colors: 8, TrueColor: false, IsTTY: true},
		"xterm-kitty":    {Colors: 1 << 24, TrueColor: true, IsTTY: true},
		"wezterm":        {Colors: 1 << 24, TrueColor: true, IsTTY: true},
	}
)

// ResolveTerminalAccent converts the accent of d for the terminal named by
// opts.Term.
func ResolveTerminalAccent(d Domain, opts RenderOptions) (TerminalAccent, error) {
	return ResolveTerminalAccentWithDetector(d, opts, detectTermProfile)
}

// ResolveTerminalAccentWithDetector is ResolveTerminalAccent with a
// caller-provided TERM detector, mainly for tests.
func ResolveTerminalAccentWithDetector(d Domain, opts RenderOptions, detector TermProfileDetector) (TerminalAccent, error) {
	if detector == nil {
		detector = detectTermProfile
	}

	profile := detector(opts.Term)
	if !UseColor(profile, opts) {
		return TerminalAccent{Profile: profile}, nil
	}

	hex, err := TerminalColor(Lookup(d).Accent)
	if err != nil {
		return TerminalAccent{}, err
	}
	return TerminalAccent{Hex: hex, Color: true, Profile: profile}, nil
}

// DetectTermProfile maps TERM to a terminal capability profile.
func DetectTermProfile(term string) TermProfile {
	return detectTermProfile(term)
}

// UseColor reports whether accents should be painted for profile. Forced
// monochrome wins over forced colour.
func UseColor(profile TermProfile, opts RenderOptions) bool {
	if opts.ForceMono {
		return false
	}
	if opts.ForceColor {
		return true
	}
	return profile.IsTTY && profile.Colors >= 8
}

func detectTermProfile(term string) TermProfile {
	norm := strings.ToLower(strings.TrimSpace(term))
	if cached, ok := termProfileCache.Load(norm); ok {
		return cached.(TermProfile)
	}

	profile := detectTermProfileUncached(norm)
	termProfileCache.Store(norm, profile)
	return profile
}

func detectTermProfileUncached(norm string) TermProfile {
	if norm == "" {
		return TermProfile{Colors: 0, TrueColor: false, IsTTY: false}
	}

	if p, ok := knownProfiles[norm]; ok {
		return p
	}

	profile := TermProfile{Colors: 16, TrueColor: false, IsTTY: true}
	if strings.Contains(norm, "truecolor") || strings.Contains(norm, "24bit") || strings.Contains(norm, "kitty") || strings.Contains(norm, "wezterm") {
		profile.TrueColor = true
		profile.Colors = 1 << 24
	}
	if strings.Contains(norm, "256") {
		profile.Colors = 256
	}
	if strings.Contains(norm, "dumb") {
		profile = TermProfile{Colors: 0, TrueColor: false, IsTTY: false}
	}
	if strings.Contains(norm, "screen") {
		profile.Colors = 8
	}

	return profile
}
