// Package tui renders the domain-themed home page for one SSH session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/homepage"
	"builder-platform/internal/theme"
)

// AccentSource exposes the accent slot written by the theme context.
// *domaintheme.Properties satisfies it.
type AccentSource interface {
	Get(name string) (string, bool)
}

// Options configures NewModel.
type Options struct {
	Width  int
	Height int
	Scheme theme.ColorScheme
	Render theme.RenderOptions
	// Renderer is the session's lipgloss renderer. Nil uses the default.
	Renderer *lipgloss.Renderer
}

// Model is the bubbletea model of the home page.
type Model struct {
	theme    *domaintheme.Context
	slot     AccentSource
	keys     KeyMap
	help     help.Model
	renderer *lipgloss.Renderer
	render   theme.RenderOptions

	width  int
	height int

	domains []theme.Domain
	cursor  int
	scheme  theme.ColorScheme
	toast   *homepage.Toast
}

// NewModel builds the home page over the session's theme context. slot is
// where the context mirrors the accent, normally the scope's Properties.
func NewModel(tc *domaintheme.Context, slot AccentSource, opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = theme.DefaultScheme
	}
	if scheme == theme.SchemeSystem {
		scheme = scheme.Resolve(r.HasDarkBackground())
	}

	m := Model{
		theme:    tc,
		slot:     slot,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		renderer: r,
		render:   opts.Render,
		width:    opts.Width,
		height:   opts.Height,
		domains:  theme.Domains(),
		scheme:   scheme,
	}
	m.help.Width = opts.Width
	m.cursor = m.indexOf(tc.Domain())
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles key presses and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		m.toast = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Left):
			m.cursor = max(m.cursor-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.cursor = min(m.cursor+1, len(m.domains)-1)
		case key.Matches(msg, m.keys.Select):
			m.selectDomain(m.domains[m.cursor])
		case key.Matches(msg, m.keys.Direct):
			idx := int(msg.String()[0] - '1')
			if idx >= 0 && idx < len(m.domains) {
				m.selectDomain(m.domains[idx])
			}
		case key.Matches(msg, m.keys.Scheme):
			m.scheme = m.scheme.Toggle()
		}
	}
	return m, nil
}

func (m *Model) selectDomain(d theme.Domain) {
	snap := m.theme.Select(d)
	m.cursor = m.indexOf(snap.Domain)
	toast := homepage.DomainChanged(snap.Theme)
	m.toast = &toast
}

func (m Model) indexOf(d theme.Domain) int {
	for i, candidate := range m.domains {
		if candidate == d {
			return i
		}
	}
	return 0
}

// Scheme is the concrete colour scheme in use.
func (m Model) Scheme() theme.ColorScheme { return m.scheme }

// Toast returns the pending notification, if any.
func (m Model) Toast() (homepage.Toast, bool) {
	if m.toast == nil {
		return homepage.Toast{}, false
	}
	return *m.toast, true
}

// accentHex reads the accent back from the slot and converts it for the
// terminal. It returns "" when colour is disabled or the slot is empty.
func (m Model) accentHex() string {
	if !theme.UseColor(theme.DetectTermProfile(m.render.Term), m.render) {
		return ""
	}
	value, ok := m.slot.Get(domaintheme.AccentProperty)
	if !ok {
		return ""
	}
	out, err := theme.TerminalColor(value)
	if err != nil {
		return ""
	}
	return out
}

func (m Model) View() string {
	accent := m.accentHex()
	p := palette{accent: accent}
	if accent != "" {
		p = surfacePalette(m.scheme, accent)
	}
	st := newStyles(m.renderer, p)
	current := m.theme.Current()

	sections := []string{
		m.renderHeader(st),
		m.renderSelection(st, current, accent != ""),
		m.renderTypes(st, current.Domain),
		m.renderStack(st),
	}
	if m.toast != nil {
		sections = append(sections, st.toast.Render(m.toast.Title+"\n"+m.toast.Description))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(st styles) string {
	return strings.Join([]string{
		st.title.Render(homepage.Title),
		st.muted.Render(homepage.Subtitle),
		st.muted.Render(fmt.Sprintf("SCHEME: [%s]", m.scheme)),
	}, "\n")
}

func (m Model) renderSelection(st styles, current domaintheme.Snapshot, colored bool) string {
	buttons := make([]string, 0, len(m.domains))
	for i, d := range m.domains {
		label := fmt.Sprintf("%d %s", i+1, theme.Lookup(d).Name)
		style := st.pill
		if d == current.Domain {
			style = st.active
		}
		if i == m.cursor {
			label = "> " + label
		}
		buttons = append(buttons, style.Render(label))
	}

	swatch := "[" + current.Domain.Slug() + "]"
	if colored {
		swatch = st.swatch.Render("      ")
	}

	body := strings.Join([]string{
		st.heading.Render(homepage.SelectTitle),
		st.muted.Render(homepage.SelectDescription),
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
		homepage.CurrentLabel + ": " + st.accent.Render(current.Theme.Name),
		st.muted.Render(current.Theme.Description),
		st.muted.Render(homepage.AccentLabel) + " " + swatch + " " + st.code.Render(current.Theme.Accent),
	}, "\n")
	return st.card.Render(body)
}

func (m Model) renderTypes(st styles, d theme.Domain) string {
	lines := homepage.TypesDemo(d)
	for i, line := range lines {
		if strings.HasPrefix(line, "//") {
			lines[i] = st.muted.Render(line)
		} else {
			lines[i] = st.code.Render(line)
		}
	}
	return st.card.Render(st.heading.Render(homepage.TypesTitle) + "\n" + strings.Join(lines, "\n"))
}

func (m Model) renderStack(st styles) string {
	entries := homepage.TechStack()
	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, st.accent.Render(fmt.Sprintf("%-13s", e.Label))+" "+e.Value)
	}
	return st.card.Render(st.heading.Render(homepage.StackTitle) + "\n" + strings.Join(rows, "\n"))
}
