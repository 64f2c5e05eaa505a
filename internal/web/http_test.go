package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/ratelimit"
	"builder-platform/internal/store"
	"builder-platform/internal/theme"
)

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	opts.Logger = zerolog.Nop()
	return NewHandler(opts).Routes()
}

func newRecordsHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.MigrateUp(context.Background())
	require.NoError(t, err)
	return newTestHandler(t, Options{Records: store.NewRecordRepository(db)})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHomePageDefaultsToConfiguredDomain(t *testing.T) {
	h := newTestHandler(t, Options{DefaultDomain: theme.Custom})
	rec := do(t, h, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<style>:root{--accent-domain:oklch(0.55 0.15 180);}</style>")
	assert.Contains(t, body, "The Builder Platform")
	assert.Contains(t, body, `data-scheme="dark"`)
	assert.NotContains(t, body, `id="toast"`)
	assert.Contains(t, body, "Your domain, your expertise")
}

func TestHomePageSelectsRequestedDomainWithToast(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodGet, "/?domain=woodworking&changed=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "--accent-domain:oklch(0.45 0.10 70);")
	assert.Contains(t, body, "Domain changed to Woodworking")
	assert.Contains(t, body, "Craftsmanship and natural materials")
	assert.Contains(t, body, `class="domain-button active" data-domain="woodworking"`)
}

func TestHomePageRejectsUnknownDomain(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodGet, "/?domain=aerospace", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "UNKNOWN_DOMAIN", env["code"])
	assert.Equal(t, "400", env["status"])
}

func TestHomePageSchemeSelection(t *testing.T) {
	h := newTestHandler(t, Options{})

	tests := []struct {
		name   string
		target string
		hint   string
		want   string
	}{
		{name: "default", target: "/", want: `data-scheme="dark"`},
		{name: "query", target: "/?scheme=light", want: `data-scheme="light"`},
		{name: "system", target: "/?scheme=system", want: `data-scheme="system"`},
		{name: "client_hint", target: "/", hint: "light", want: `data-scheme="light"`},
		{name: "query_beats_hint", target: "/?scheme=dark", hint: "light", want: `data-scheme="dark"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.hint != "" {
				req.Header.Set(preferenceHeader, tc.hint)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Equal(t, preferenceHeader, rec.Header().Get("Accept-CH"))
		})
	}

	rec := do(t, h, http.MethodGet, "/?scheme=sepia", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_SCHEME", decodeEnvelope(t, rec)["code"])
}

func TestRequestsDoNotShareSelection(t *testing.T) {
	h := newTestHandler(t, Options{DefaultDomain: theme.Automotive})

	first := do(t, h, http.MethodGet, "/api/theme?domain=culinary", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := do(t, h, http.MethodGet, "/api/theme", "")
	require.Equal(t, http.StatusOK, second.Code)

	var got themeResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &got))
	assert.Equal(t, theme.Automotive, got.Domain)
	assert.Equal(t, "oklch(0.55 0.15 240)", got.Properties[domaintheme.AccentProperty])
}

func TestCurrentThemeMirrorsAccentSlot(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodGet, "/api/theme?domain=CULINARY", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got themeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, theme.Culinary, got.Domain)
	assert.Equal(t, theme.Lookup(theme.Culinary), got.Theme)
	assert.Equal(t, got.Theme.Accent, got.Properties[domaintheme.AccentProperty])
}

func TestStaticTokenEndpoints(t *testing.T) {
	h := newTestHandler(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/domains", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var domains []theme.DomainEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &domains))
	require.Len(t, domains, 4)
	assert.Equal(t, theme.Automotive, domains[0].Domain)
	assert.Equal(t, "Automotive", domains[0].Name)

	rec = do(t, h, http.MethodGet, "/api/tokens", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var set theme.Set
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &set))
	assert.Equal(t, theme.DesignTokens(), set)

	rec = do(t, h, http.MethodGet, "/api/confidence?score=87", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var level theme.ConfidenceLevel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &level))
	assert.Equal(t, "high", level.Name)

	rec = do(t, h, http.MethodGet, "/api/confidence?score=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tokens", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeEnvelope(t, rec)["code"])
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec)["code"])
}

func TestRecordsNotMountedWithoutStore(t *testing.T) {
	h := newTestHandler(t, Options{})
	rec := do(t, h, http.MethodGet, "/api/records", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordLifecycle(t *testing.T) {
	h := newRecordsHandler(t)

	rec := do(t, h, http.MethodPost, "/api/records", `{"domain":"culinary","title":"  Mother sauces ","body":"Five of them."}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created store.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Mother sauces", created.Title)
	assert.Equal(t, theme.Culinary, created.Domain)

	rec = do(t, h, http.MethodPost, "/api/records", `{"domain":"automotive","title":"Torque specs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/records?domain=culinary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []store.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = do(t, h, http.MethodPut, "/api/records/"+created.ID, `{"domain":"culinary","title":"Mother sauces","body":"Béchamel, velouté, espagnole, hollandaise, tomato."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated store.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Contains(t, updated.Body, "hollandaise")

	rec = do(t, h, http.MethodGet, "/api/records/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/records/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/records/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RECORD_NOT_FOUND", decodeEnvelope(t, rec)["code"])
}

func TestRecordValidation(t *testing.T) {
	h := newRecordsHandler(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
		status   int
	}{
		{name: "unknown_field", body: `{"domain":"custom","title":"x","extra":1}`, wantCode: "BAD_JSON", status: http.StatusBadRequest},
		{name: "bad_json", body: `{"domain":`, wantCode: "BAD_JSON", status: http.StatusBadRequest},
		{name: "trailing_object", body: `{"domain":"custom","title":"x"}{}`, wantCode: "BAD_JSON", status: http.StatusBadRequest},
		{name: "unknown_domain", body: `{"domain":"aerospace","title":"x"}`, wantCode: "UNKNOWN_DOMAIN", status: http.StatusBadRequest},
		{name: "missing_domain", body: `{"title":"x"}`, wantCode: "INVALID_RECORD", status: http.StatusBadRequest},
		{name: "missing_title", body: `{"domain":"custom","title":"   "}`, wantCode: "INVALID_RECORD", status: http.StatusBadRequest},
		{name: "too_large", body: `{"domain":"custom","title":"x","body":"` + strings.Repeat("a", maxRecordBodyBytes) + `"}`, wantCode: "BODY_TOO_LARGE", status: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/records", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantCode, decodeEnvelope(t, rec)["code"])
		})
	}

	rec := do(t, h, http.MethodDelete, "/api/records/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/records", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitedRequests(t *testing.T) {
	h := newTestHandler(t, Options{Limiter: ratelimit.New(60, 1)})

	first := do(t, h, http.MethodGet, "/api/domains", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := do(t, h, http.MethodGet, "/api/domains", "")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope(t, second)["code"])
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestThemeEndpointsFailOutsideScope(t *testing.T) {
	h := NewHandler(Options{Logger: zerolog.Nop()})
	rec := httptest.NewRecorder()
	h.currentTheme(rec, httptest.NewRequest(http.MethodGet, "/api/theme", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "SCOPE_MISSING", decodeEnvelope(t, rec)["code"])
}
