package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/theme"
)

func newTestModel(t *testing.T, d theme.Domain, render theme.RenderOptions) (Model, *domaintheme.Context, *domaintheme.Properties) {
	t.Helper()
	props := domaintheme.NewProperties()
	tc := domaintheme.New(props, domaintheme.WithDomain(d))
	m := NewModel(tc, props, Options{
		Width:    100,
		Height:   40,
		Scheme:   theme.SchemeDark,
		Render:   render,
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
	return m, tc, props
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelRendersHomePage(t *testing.T) {
	m, _, _ := newTestModel(t, theme.Automotive, theme.RenderOptions{ForceMono: true})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}

	view := m.View()
	for _, want := range []string{
		"The Builder Platform",
		"Select Your Domain",
		"Current Domain: Automotive",
		"Precision engineering and performance",
		"oklch(0.55 0.15 240)",
		"[automotive]",
		"Tech Stack",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if _, ok := m.Toast(); ok {
		t.Fatalf("expected no toast before any selection")
	}
}

func TestSelectPropagatesAccentAndShowsNewName(t *testing.T) {
	m, tc, props := newTestModel(t, theme.Automotive, theme.RenderOptions{ForceMono: true})

	m = press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})

	if tc.Domain() != theme.Culinary {
		t.Fatalf("Domain() = %v, want %v", tc.Domain(), theme.Culinary)
	}
	if got, _ := props.Get(domaintheme.AccentProperty); got != "oklch(0.55 0.15 30)" {
		t.Fatalf("accent slot = %q", got)
	}
	toast, ok := m.Toast()
	if !ok || toast.Title != "Domain changed to Culinary" {
		t.Fatalf("toast = %+v (%v), want new domain name", toast, ok)
	}
	if toast.Description != "Technique, tradition, and flavor" {
		t.Fatalf("toast description = %q", toast.Description)
	}
	if !strings.Contains(m.View(), "Domain changed to Culinary") {
		t.Fatalf("view missing toast")
	}

	m = press(m, runes("l"))
	if _, ok := m.Toast(); ok {
		t.Fatalf("toast should clear on the next key press")
	}
	if tc.Domain() != theme.Culinary {
		t.Fatalf("moving the cursor must not change the selection")
	}
}

func TestDirectSelectionKeys(t *testing.T) {
	tests := []struct {
		key  string
		want theme.Domain
	}{
		{key: "1", want: theme.Automotive},
		{key: "2", want: theme.Culinary},
		{key: "3", want: theme.Woodworking},
		{key: "4", want: theme.Custom},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			m, ctx, _ := newTestModel(t, theme.Custom, theme.RenderOptions{})
			m = press(m, runes(tc.key))
			if ctx.Domain() != tc.want {
				t.Fatalf("Domain() = %v, want %v", ctx.Domain(), tc.want)
			}
			if m.domains[m.cursor] != tc.want {
				t.Fatalf("cursor on %v, want %v", m.domains[m.cursor], tc.want)
			}
		})
	}
}

func TestCursorClampsAtEdges(t *testing.T) {
	m, _, _ := newTestModel(t, theme.Automotive, theme.RenderOptions{})
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft}, runes("h"))
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
	m = press(m, runes("l"), runes("l"), runes("l"), runes("l"), runes("l"))
	if m.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", m.cursor)
	}
}

func TestReselectingActiveDomainStillToasts(t *testing.T) {
	m, tc, _ := newTestModel(t, theme.Woodworking, theme.RenderOptions{})
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if tc.Domain() != theme.Woodworking {
		t.Fatalf("Domain() = %v", tc.Domain())
	}
	if toast, ok := m.Toast(); !ok || toast.Title != "Domain changed to Woodworking" {
		t.Fatalf("toast = %+v (%v)", toast, ok)
	}
}

func TestHeaderShowsTitleAndScheme(t *testing.T) {
	m, _, _ := newTestModel(t, theme.Custom, theme.RenderOptions{})
	header := m.renderHeader(newStyles(m.renderer, palette{}))
	lines := strings.Split(header, "\n")
	if len(lines) != 3 {
		t.Fatalf("header has %d lines, want 3: %q", len(lines), header)
	}
	if !strings.Contains(lines[2], "SCHEME: [dark]") || strings.Contains(header, "OBSERVER") {
		t.Fatalf("unexpected header status line %q", lines[2])
	}
}

func TestSchemeToggle(t *testing.T) {
	m, _, _ := newTestModel(t, theme.Custom, theme.RenderOptions{})
	if m.Scheme() != theme.SchemeDark {
		t.Fatalf("Scheme() = %v, want dark", m.Scheme())
	}
	m = press(m, runes("t"))
	if m.Scheme() != theme.SchemeLight {
		t.Fatalf("Scheme() = %v, want light", m.Scheme())
	}
	if !strings.Contains(m.View(), "SCHEME: [light]") {
		t.Fatalf("view missing light scheme marker")
	}
	m = press(m, runes("t"))
	if m.Scheme() != theme.SchemeDark {
		t.Fatalf("Scheme() = %v, want dark", m.Scheme())
	}
}

func TestSystemSchemeResolvesToConcrete(t *testing.T) {
	props := domaintheme.NewProperties()
	m := NewModel(domaintheme.New(props), props, Options{
		Scheme:   theme.SchemeSystem,
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
	if s := m.Scheme(); s != theme.SchemeDark && s != theme.SchemeLight {
		t.Fatalf("Scheme() = %v, want a concrete scheme", s)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _, _ := newTestModel(t, theme.Custom, theme.RenderOptions{})
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%q: expected quit command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q: expected tea.QuitMsg", k.String())
		}
	}
}

func TestAccentHexFollowsSlotAndRenderOptions(t *testing.T) {
	mono, _, _ := newTestModel(t, theme.Culinary, theme.RenderOptions{ForceColor: true, ForceMono: true})
	if got := mono.accentHex(); got != "" {
		t.Fatalf("forced mono accentHex() = %q, want empty", got)
	}

	dumb, _, _ := newTestModel(t, theme.Culinary, theme.RenderOptions{Term: "dumb"})
	if got := dumb.accentHex(); got != "" {
		t.Fatalf("dumb terminal accentHex() = %q, want empty", got)
	}

	m, tc, _ := newTestModel(t, theme.Culinary, theme.RenderOptions{Term: "xterm-256color"})
	want, err := theme.TerminalColor(theme.Lookup(theme.Culinary).Accent)
	if err != nil {
		t.Fatalf("TerminalColor() error = %v", err)
	}
	if got := m.accentHex(); got != want {
		t.Fatalf("accentHex() = %q, want %q", got, want)
	}

	tc.Select(theme.Woodworking)
	want, _ = theme.TerminalColor(theme.Lookup(theme.Woodworking).Accent)
	if got := m.accentHex(); got != want {
		t.Fatalf("accentHex() after select = %q, want %q", got, want)
	}
}

func TestWindowResize(t *testing.T) {
	m, _, _ := newTestModel(t, theme.Custom, theme.RenderOptions{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	m = next.(Model)
	if m.width != 120 || m.height != 50 || m.help.Width != 120 {
		t.Fatalf("resize not applied: %d x %d (help %d)", m.width, m.height, m.help.Width)
	}
}
