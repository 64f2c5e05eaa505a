package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/homepage"
	"builder-platform/internal/theme"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html.tmpl"))

const preferenceHeader = "Sec-CH-Prefers-Color-Scheme"

type domainButton struct {
	Slug   string
	Name   string
	Href   string
	Active bool
}

// surfaceCSS is a theme.Surface as trusted CSS values. The values come from
// the static token table, never from the request.
type surfaceCSS struct {
	Background template.CSS
	Foreground template.CSS
	Muted      template.CSS
	Border     template.CSS
}

func newSurfaceCSS(s theme.Surface) surfaceCSS {
	return surfaceCSS{
		Background: template.CSS(s.Background),
		Foreground: template.CSS(s.Foreground),
		Muted:      template.CSS(s.Muted),
		Border:     template.CSS(s.Border),
	}
}

type pageData struct {
	Title             string
	Subtitle          string
	SelectTitle       string
	SelectDescription string
	CurrentLabel      string
	AccentLabel       string
	TypesTitle        string
	StackTitle        string

	// Style is the :root rule rendered from the request's property slot.
	Style   template.CSS
	Scheme  theme.ColorScheme
	Dark    surfaceCSS
	Light   surfaceCSS
	Toggle  string
	Buttons []domainButton
	Current domaintheme.Snapshot
	Types   []string
	Stack   []homepage.StackEntry
	Toast   *homepage.Toast
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, "home", http.MethodGet, http.MethodHead) {
		return
	}

	scheme, err := h.requestScheme(r)
	if err != nil {
		h.logRejection(r, "home", "unknown_scheme", r.URL.Query().Get("scheme"))
		writeMappedErr(w, err)
		return
	}
	tc, err := requestTheme(r)
	if err != nil {
		h.logRejection(r, "home", "theme_unavailable", err.Error())
		writeMappedErr(w, err)
		return
	}
	props, err := requestProperties(r.Context())
	if err != nil {
		writeMappedErr(w, err)
		return
	}

	current := tc.Current()
	data := pageData{
		Title:             homepage.Title,
		Subtitle:          homepage.Subtitle,
		SelectTitle:       homepage.SelectTitle,
		SelectDescription: homepage.SelectDescription,
		CurrentLabel:      homepage.CurrentLabel,
		AccentLabel:       homepage.AccentLabel,
		TypesTitle:        homepage.TypesTitle,
		StackTitle:        homepage.StackTitle,
		Style:             template.CSS(props.CSS()),
		Scheme:            scheme,
		Dark:              newSurfaceCSS(theme.SchemeSurface(theme.SchemeDark)),
		Light:             newSurfaceCSS(theme.SchemeSurface(theme.SchemeLight)),
		Toggle:            pageURL(current.Domain, scheme.Resolve(prefersDark(r)).Toggle(), false),
		Current:           current,
		Types:             homepage.TypesDemo(current.Domain),
		Stack:             homepage.TechStack(),
	}
	for _, d := range theme.Domains() {
		data.Buttons = append(data.Buttons, domainButton{
			Slug:   d.Slug(),
			Name:   theme.Lookup(d).Name,
			Href:   pageURL(d, scheme, true),
			Active: d == current.Domain,
		})
	}
	if r.URL.Query().Get("changed") == "1" {
		toast := homepage.DomainChanged(current.Theme)
		data.Toast = &toast
	}

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("render home page")
		writeErr(w, http.StatusInternalServerError, "RENDER_FAILED", "home page could not be rendered")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", preferenceHeader)
	w.Header().Set("Vary", preferenceHeader)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// requestScheme picks the colour scheme: ?scheme= first, then the client
// hint header, then the configured default.
func (h *Handler) requestScheme(r *http.Request) (theme.ColorScheme, error) {
	if raw := r.URL.Query().Get("scheme"); raw != "" {
		return theme.ParseColorScheme(raw)
	}
	if hint := strings.TrimSpace(r.Header.Get(preferenceHeader)); hint != "" {
		if s, err := theme.ParseColorScheme(hint); err == nil && s != theme.SchemeSystem {
			return s, nil
		}
	}
	return h.defaultScheme, nil
}

// prefersDark reads the client hint; without one, dark is assumed.
func prefersDark(r *http.Request) bool {
	return !strings.EqualFold(strings.TrimSpace(r.Header.Get(preferenceHeader)), string(theme.SchemeLight))
}

func pageURL(d theme.Domain, scheme theme.ColorScheme, changed bool) string {
	q := url.Values{}
	q.Set("domain", d.Slug())
	q.Set("scheme", string(scheme))
	if changed {
		q.Set("changed", "1")
	}
	return "/?" + q.Encode()
}
