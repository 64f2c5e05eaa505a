package theme

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
)

func TestLookupTotality(t *testing.T) {
	t.Parallel()

	for _, d := range Domains() {
		rec := Lookup(d)
		if rec.Accent == "" || rec.Name == "" || rec.Description == "" {
			t.Fatalf("Lookup(%s) = %+v, want non-empty fields", d, rec)
		}
	}
	if got := len(Domains()); got != int(domainCount) {
		t.Fatalf("len(Domains()) = %d, want %d", got, domainCount)
	}
}

func TestLookupSnapshots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain Domain
		want   Record
	}{
		{domain: Automotive, want: Record{Accent: "oklch(0.55 0.15 240)", Name: "Automotive", Description: "Precision engineering and performance"}},
		{domain: Culinary, want: Record{Accent: "oklch(0.55 0.15 30)", Name: "Culinary", Description: "Technique, tradition, and flavor"}},
		{domain: Woodworking, want: Record{Accent: "oklch(0.45 0.10 70)", Name: "Woodworking", Description: "Craftsmanship and natural materials"}},
		{domain: Custom, want: Record{Accent: "oklch(0.55 0.15 180)", Name: "Custom", Description: "Your domain, your expertise"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.domain.String(), func(t *testing.T) {
			t.Parallel()
			if got := Lookup(tt.domain); got != tt.want {
				t.Fatalf("snapshot mismatch for %s:\n got=%+v\nwant=%+v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestLookupPanicsOnUndeclaredDomain(t *testing.T) {
	for _, d := range []Domain{-1, domainCount, Domain(99)} {
		var recovered any
		func() {
			defer func() { recovered = recover() }()
			Lookup(d)
		}()

		err, ok := recovered.(error)
		if !ok || !errors.Is(err, ErrUnknownDomain) {
			t.Fatalf("Lookup(%d) panic = %v, want ErrUnknownDomain", int(d), recovered)
		}
	}
}

func TestLookupStability(t *testing.T) {
	t.Parallel()

	first := Lookup(Automotive)
	first.Name = "mutated"

	if second := Lookup(Automotive); second.Name != "Automotive" {
		t.Fatalf("expected immutable table, got %q", second.Name)
	}
	if Lookup(Culinary) != Lookup(Culinary) {
		t.Fatalf("Lookup(Culinary) is not stable")
	}
}

func TestDomainsReturnsCopy(t *testing.T) {
	t.Parallel()

	list := Domains()
	list[0] = Custom
	if Domains()[0] != Automotive {
		t.Fatalf("Domains() exposed internal state")
	}
}

func TestParseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Domain
	}{
		{in: "AUTOMOTIVE", want: Automotive},
		{in: "culinary", want: Culinary},
		{in: " Woodworking ", want: Woodworking},
		{in: "custom", want: Custom},
	}
	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		if err != nil {
			t.Fatalf("ParseDomain(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDomain(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "pottery", "AUTO", "custom!"} {
		if _, err := ParseDomain(bad); !errors.Is(err, ErrUnknownDomain) {
			t.Fatalf("ParseDomain(%q) error = %v, want ErrUnknownDomain", bad, err)
		}
	}
}

func TestDomainTextRoundTrip(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(map[string]Domain{"domain": Woodworking})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(payload) != `{"domain":"WOODWORKING"}` {
		t.Fatalf("Marshal() = %s", payload)
	}

	var decoded struct {
		Domain Domain `json:"domain"`
	}
	if err := json.Unmarshal([]byte(`{"domain":"culinary"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if decoded.Domain != Culinary {
		t.Fatalf("decoded domain = %s, want CULINARY", decoded.Domain)
	}

	if _, err := Domain(42).MarshalText(); !errors.Is(err, ErrUnknownDomain) {
		t.Fatalf("MarshalText() out of range error = %v", err)
	}
	if got := Domain(42).String(); got != "Domain(42)" {
		t.Fatalf("String() = %q", got)
	}
	if got := Automotive.Slug(); got != "automotive" {
		t.Fatalf("Slug() = %q", got)
	}
}

func TestDefaultDomainIsCustom(t *testing.T) {
	t.Parallel()

	if DefaultDomain != Custom {
		t.Fatalf("DefaultDomain = %s, want CUSTOM", DefaultDomain)
	}
}

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestTerminalColorConvertsEveryAccent(t *testing.T) {
	t.Parallel()

	for _, d := range Domains() {
		hex, err := TerminalColor(Lookup(d).Accent)
		if err != nil {
			t.Fatalf("TerminalColor(%s) unexpected error: %v", d, err)
		}
		if !hexPattern.MatchString(hex) {
			t.Fatalf("TerminalColor(%s) = %q, want #rrggbb", d, hex)
		}
	}
}

func TestTerminalColorKeepsHue(t *testing.T) {
	t.Parallel()

	blue, err := TerminalColor(Lookup(Automotive).Accent)
	if err != nil {
		t.Fatalf("TerminalColor() error: %v", err)
	}
	warm, err := TerminalColor(Lookup(Culinary).Accent)
	if err != nil {
		t.Fatalf("TerminalColor() error: %v", err)
	}

	if blue[1:3] >= blue[5:7] {
		t.Fatalf("automotive accent %s should be more blue than red", blue)
	}
	if warm[1:3] <= warm[5:7] {
		t.Fatalf("culinary accent %s should be more red than blue", warm)
	}
}

func TestTerminalColorCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "white", in: "oklch(1 0 0)", want: "#ffffff"},
		{name: "black", in: "oklch(0 0 0)", want: "#000000"},
		{name: "percent lightness", in: "oklch(100% 0 0)", want: "#ffffff"},
		{name: "hex passthrough", in: "#0B1F3A", want: "#0b1f3a"},
		{name: "named colour", in: "rebeccapurple", wantErr: true},
		{name: "rgb", in: "rgb(1, 2, 3)", wantErr: true},
		{name: "broken hex", in: "#zzzzzz", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TerminalColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedColor) {
					t.Fatalf("TerminalColor(%q) error = %v, want ErrUnsupportedColor", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TerminalColor(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("TerminalColor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
