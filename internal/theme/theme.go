package theme

import (
	"errors"
	"fmt"
	"strings"
)

// Domain identifies the field of expertise the UI adapts to.
type Domain int

const (
	Automotive Domain = iota
	Culinary
	Woodworking
	Custom

	domainCount
)

// DefaultDomain is selected when the owner of a scope does not pick one.
const DefaultDomain = Custom

// Record describes how one domain is displayed.
//
// Accent is an opaque colour string suitable for a styling API; callers must
// not assume a specific colour space.
type Record struct {
	Accent      string `json:"accent"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrUnknownDomain is returned when text does not name a known domain.
var ErrUnknownDomain = errors.New("unknown domain")

var domainNames = [...]string{
	Automotive:  "AUTOMOTIVE",
	Culinary:    "CULINARY",
	Woodworking: "WOODWORKING",
	Custom:      "CUSTOM",
}

var domainThemes = [...]Record{
	Automotive: {
		Accent:      accentAutomotive,
		Name:        "Automotive",
		Description: "Precision engineering and performance",
	},
	Culinary: {
		Accent:      accentCulinary,
		Name:        "Culinary",
		Description: "Technique, tradition, and flavor",
	},
	Woodworking: {
		Accent:      accentWoodworking,
		Name:        "Woodworking",
		Description: "Craftsmanship and natural materials",
	},
	Custom: {
		Accent:      accentCustom,
		Name:        "Custom",
		Description: "Your domain, your expertise",
	},
}

// Both tables must have exactly one entry per Domain; a mismatch makes one of
// these array lengths negative and breaks the build.
var (
	_ [len(domainThemes) - int(domainCount)]struct{}
	_ [int(domainCount) - len(domainThemes)]struct{}
	_ [len(domainNames) - int(domainCount)]struct{}
	_ [int(domainCount) - len(domainNames)]struct{}
)

var domains = [...]Domain{Automotive, Culinary, Woodworking, Custom}

// Lookup returns the display record for d. It never fails for a declared
// Domain and returns the same value for the lifetime of the process. Any other
// value is a programming error and panics with ErrUnknownDomain.
func Lookup(d Domain) Record {
	if !d.valid() {
		panic(fmt.Errorf("%w: %d", ErrUnknownDomain, int(d)))
	}
	return domainThemes[d]
}

// Domains lists every domain in declaration order.
func Domains() []Domain {
	out := make([]Domain, len(domains))
	copy(out, domains[:])
	return out
}

// ParseDomain converts external text (a query parameter, an SSH user name, a
// config value) into a Domain.
func ParseDomain(raw string) (Domain, error) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	for _, d := range domains {
		if domainNames[d] == norm {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDomain, raw)
}

func (d Domain) valid() bool { return d >= 0 && d < domainCount }

func (d Domain) String() string {
	if !d.valid() {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domainNames[d]
}

// Slug is the lower-case form used in URLs and SSH user names.
func (d Domain) Slug() string {
	return strings.ToLower(d.String())
}

func (d Domain) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDomain, int(d))
	}
	return []byte(domainNames[d]), nil
}

func (d *Domain) UnmarshalText(text []byte) error {
	parsed, err := ParseDomain(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
