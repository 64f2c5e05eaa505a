package web

import (
	"context"
	"net/http"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/theme"
)

type propertiesKey struct{}

// withThemeScope gives every request its own theme Context seeded with
// fallback. Handlers reach it through domaintheme.Access.
func (h *Handler) withThemeScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		props := domaintheme.NewProperties()
		ctx, _, err := domaintheme.Initialize(r.Context(), props,
			domaintheme.WithDomain(h.defaultDomain),
			domaintheme.WithObserver(func(prev, next domaintheme.Snapshot) {
				h.logger.Debug().
					Str("event", "domain_selected").
					Str("path", r.URL.Path).
					Str("from", prev.Domain.Slug()).
					Str("to", next.Domain.Slug()).
					Msg("domain changed")
			}),
		)
		if err != nil {
			h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("theme scope")
			writeErr(w, http.StatusInternalServerError, "SCOPE_CONFLICT", "theme scope already initialized")
			return
		}
		ctx = context.WithValue(ctx, propertiesKey{}, props)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestTheme returns the request's theme Context after applying the
// optional ?domain= selection.
func requestTheme(r *http.Request) (*domaintheme.Context, error) {
	tc, err := domaintheme.Access(r.Context())
	if err != nil {
		return nil, err
	}
	if raw := r.URL.Query().Get("domain"); raw != "" {
		d, err := theme.ParseDomain(raw)
		if err != nil {
			return nil, err
		}
		tc.Select(d)
	}
	return tc, nil
}

func requestProperties(ctx context.Context) (*domaintheme.Properties, error) {
	props, ok := ctx.Value(propertiesKey{}).(*domaintheme.Properties)
	if !ok || props == nil {
		return nil, domaintheme.ErrUsedOutsideScope
	}
	return props, nil
}
