package theme

const (
	accentAutomotive  = "oklch(0.55 0.15 240)"
	accentCulinary    = "oklch(0.55 0.15 30)"
	accentWoodworking = "oklch(0.45 0.10 70)"
	accentCustom      = "oklch(0.55 0.15 180)"
)

// Token is one named value of a design scale.
type Token struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Typography groups the font scales.
type Typography struct {
	Fonts   []Token `json:"fonts"`
	Sizes   []Token `json:"sizes"`
	Leading []Token `json:"leading"`
}

// Colors groups the non-surface colours.
type Colors struct {
	Domains []Token `json:"domains"`
	Tiers   []Token `json:"tiers"`
}

// ConfidenceLevel is the lower bound (in percent) of a fact verification band.
type ConfidenceLevel struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// DomainEntry pairs a domain with its record for listings.
type DomainEntry struct {
	Domain Domain `json:"domain"`
	Record
}

// Set is the full design token table.
type Set struct {
	Typography  Typography        `json:"typography"`
	Colors      Colors            `json:"colors"`
	Spacing     []Token           `json:"spacing"`
	Transitions []Token           `json:"transitions"`
	Radius      []Token           `json:"radius"`
	Domains     []DomainEntry     `json:"domain_themes"`
	Confidence  []ConfidenceLevel `json:"confidence_levels"`
}

var (
	fonts = []Token{
		{"ui", "var(--font-inter)"},
		{"reading", "var(--font-merriweather)"},
		{"code", "var(--font-jetbrains-mono)"},
	}
	fontSizes = []Token{
		{"xs", "0.75rem"},
		{"sm", "0.875rem"},
		{"base", "1rem"},
		{"lg", "1.125rem"},
		{"xl", "1.25rem"},
		{"2xl", "1.5rem"},
		{"3xl", "1.875rem"},
		{"4xl", "2.25rem"},
	}
	leading = []Token{
		{"tight", "1.25"},
		{"normal", "1.5"},
		{"relaxed", "1.75"},
		{"loose", "2"},
	}
	domainColors = []Token{
		{"automotive", accentAutomotive},
		{"culinary", accentCulinary},
		{"woodworking", accentWoodworking},
	}
	tierColors = []Token{
		{"tier1", "oklch(0.65 0.18 142)"},
		{"tier2", "oklch(0.75 0.18 85)"},
		{"tier3", "oklch(0.65 0.18 240)"},
	}
	spacing = []Token{
		{"xs", "0.25rem"},
		{"sm", "0.5rem"},
		{"md", "1rem"},
		{"lg", "1.5rem"},
		{"xl", "2rem"},
		{"2xl", "3rem"},
		{"3xl", "4rem"},
	}
	transitions = []Token{
		{"fast", "120ms cubic-bezier(0.4, 0, 0.2, 1)"},
		{"base", "150ms cubic-bezier(0.4, 0, 0.2, 1)"},
		{"slow", "180ms cubic-bezier(0.4, 0, 0.2, 1)"},
		{"spring", "300ms cubic-bezier(0.34, 1.56, 0.64, 1)"},
	}
	radius = []Token{
		{"sm", "0.425rem"},
		{"md", "0.625rem"},
		{"lg", "0.825rem"},
		{"xl", "1.025rem"},
		{"full", "9999px"},
	}
	// Ordered by threshold, ascending.
	confidenceLevels = []ConfidenceLevel{
		{"low", 0},
		{"medium", 50},
		{"high", 80},
		{"verified", 95},
	}
)

// DesignTokens returns a copy of every static scale. Callers may modify the
// result freely.
func DesignTokens() Set {
	entries := make([]DomainEntry, 0, len(domains))
	for _, d := range domains {
		entries = append(entries, DomainEntry{Domain: d, Record: Lookup(d)})
	}

	return Set{
		Typography: Typography{
			Fonts:   cloneTokens(fonts),
			Sizes:   cloneTokens(fontSizes),
			Leading: cloneTokens(leading),
		},
		Colors: Colors{
			Domains: cloneTokens(domainColors),
			Tiers:   cloneTokens(tierColors),
		},
		Spacing:     cloneTokens(spacing),
		Transitions: cloneTokens(transitions),
		Radius:      cloneTokens(radius),
		Domains:     entries,
		Confidence:  append([]ConfidenceLevel(nil), confidenceLevels...),
	}
}

// ClassifyConfidence returns the highest confidence level whose threshold
// score reaches. Scores are clamped to 0..100.
func ClassifyConfidence(score int) ConfidenceLevel {
	score = min(max(score, 0), 100)
	level := confidenceLevels[0]
	for _, candidate := range confidenceLevels[1:] {
		if score < candidate.Threshold {
			break
		}
		level = candidate
	}
	return level
}

func cloneTokens(in []Token) []Token {
	out := make([]Token, len(in))
	copy(out, in)
	return out
}
