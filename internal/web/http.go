// Package web serves the domain-themed home page and its JSON API over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/ratelimit"
	"builder-platform/internal/store"
	"builder-platform/internal/theme"
)

const maxRecordBodyBytes = 64 * 1024

// RecordStore is the persistence the records API needs.
// *store.RecordRepository satisfies it.
type RecordStore interface {
	Create(ctx context.Context, rec *store.Record) error
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, domain *theme.Domain) ([]*store.Record, error)
	Update(ctx context.Context, rec *store.Record) error
	Delete(ctx context.Context, id string) error
}

// Options configures NewHandler.
type Options struct {
	DefaultDomain theme.Domain
	DefaultScheme theme.ColorScheme
	// Limiter is shared with the SSH surface. Nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Records mounts /api/records when non-nil.
	Records RecordStore
	Logger  zerolog.Logger
}

// Handler serves the HTTP surface.
type Handler struct {
	defaultDomain theme.Domain
	defaultScheme theme.ColorScheme
	limiter       *ratelimit.Limiter
	records       RecordStore
	logger        zerolog.Logger
}

func NewHandler(opts Options) *Handler {
	scheme := opts.DefaultScheme
	if scheme == "" {
		scheme = theme.DefaultScheme
	}
	return &Handler{
		defaultDomain: opts.DefaultDomain,
		defaultScheme: scheme,
		limiter:       opts.Limiter,
		records:       opts.Records,
		logger:        opts.Logger.With().Str("component", "web").Logger(),
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/{$}", h.withThemeScope(http.HandlerFunc(h.home)))
	mux.Handle("/api/theme", h.withThemeScope(http.HandlerFunc(h.currentTheme)))
	mux.HandleFunc("/api/domains", h.listDomains)
	mux.HandleFunc("/api/tokens", h.tokens)
	mux.HandleFunc("/api/confidence", h.confidence)
	if h.records != nil {
		mux.HandleFunc("/api/records", h.recordCollection)
		mux.HandleFunc("/api/records/{id}", h.recordItem)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		h.logRejection(r, "route", "unknown_route", r.URL.Path)
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	})
	return h.instrument(h.rateLimit(mux))
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(observer, r)
		h.logger.Info().
			Str("event", "http_request").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", observer.status).
			Int64("duration_ms", time.Since(started).Milliseconds()).
			Str("remote", r.RemoteAddr).
			Msg("request served")
	})
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientHost(r.RemoteAddr)
		if !h.limiter.Allow(key) {
			h.logger.Warn().Str("event", "rate_limit_throttled").Str("surface", "http").Str("remote", key).Msg("request throttled")
			w.Header().Set("Retry-After", "1")
			writeErr(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusObserver struct {
	http.ResponseWriter
	status int
}

func (o *statusObserver) WriteHeader(status int) {
	o.status = status
	o.ResponseWriter.WriteHeader(status)
}

func (o *statusObserver) Flush() {
	if flusher, ok := o.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

type themeResponse struct {
	domaintheme.Snapshot
	Properties map[string]string `json:"properties"`
}

func (h *Handler) currentTheme(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, "current_theme", http.MethodGet) {
		return
	}
	tc, err := requestTheme(r)
	if err != nil {
		h.logRejection(r, "current_theme", "theme_unavailable", err.Error())
		writeMappedErr(w, err)
		return
	}
	props, err := requestProperties(r.Context())
	if err != nil {
		writeMappedErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Snapshot: tc.Current(), Properties: props.Snapshot()})
}

func (h *Handler) listDomains(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, "list_domains", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, theme.DesignTokens().Domains)
}

func (h *Handler) tokens(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, "tokens", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, theme.DesignTokens())
}

func (h *Handler) confidence(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethods(w, r, "confidence", http.MethodGet) {
		return
	}
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil {
		h.logRejection(r, "confidence", "bad_score", r.URL.Query().Get("score"))
		writeErr(w, http.StatusBadRequest, "BAD_SCORE", "score must be an integer between 0 and 100")
		return
	}
	writeJSON(w, http.StatusOK, theme.ClassifyConfidence(score))
}

type recordRequest struct {
	Domain *theme.Domain `json:"domain"`
	Title  string        `json:"title"`
	Body   string        `json:"body"`
}

func (req recordRequest) record(id string) (*store.Record, error) {
	if req.Domain == nil {
		return nil, fmt.Errorf("%w: domain is required", store.ErrInvalidRecord)
	}
	return &store.Record{ID: id, Domain: *req.Domain, Title: req.Title, Body: req.Body}, nil
}

func (h *Handler) recordCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var filter *theme.Domain
		if raw := r.URL.Query().Get("domain"); raw != "" {
			d, err := theme.ParseDomain(raw)
			if err != nil {
				h.logRejection(r, "list_records", "unknown_domain", raw)
				writeMappedErr(w, err)
				return
			}
			filter = &d
		}
		recs, err := h.records.List(r.Context(), filter)
		if err != nil {
			h.logRejection(r, "list_records", "list_failed", err.Error())
			writeMappedErr(w, persistenceError(err))
			return
		}
		if recs == nil {
			recs = []*store.Record{}
		}
		writeJSON(w, http.StatusOK, recs)
	case http.MethodPost:
		var req recordRequest
		if err := decodeJSONBody(w, r, maxRecordBodyBytes, &req); err != nil {
			h.logRejection(r, "create_record", "bad_json", err.Error())
			return
		}
		rec, err := req.record("")
		if err == nil {
			err = h.records.Create(r.Context(), rec)
		}
		if err != nil {
			h.logRejection(r, "create_record", "create_failed", err.Error())
			writeMappedErr(w, persistenceError(err))
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	default:
		h.logRejection(r, "records", "method_not_allowed", "")
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (h *Handler) recordItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeErr(w, http.StatusBadRequest, "BAD_PATH", "record id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := h.records.Get(r.Context(), id)
		if err != nil {
			h.logRejection(r, "get_record", "get_failed", err.Error())
			writeMappedErr(w, persistenceError(err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodPut:
		var req recordRequest
		if err := decodeJSONBody(w, r, maxRecordBodyBytes, &req); err != nil {
			h.logRejection(r, "update_record", "bad_json", err.Error())
			return
		}
		rec, err := req.record(id)
		if err == nil {
			err = h.records.Update(r.Context(), rec)
		}
		if err != nil {
			h.logRejection(r, "update_record", "update_failed", err.Error())
			writeMappedErr(w, persistenceError(err))
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		if err := h.records.Delete(r.Context(), id); err != nil {
			h.logRejection(r, "delete_record", "delete_failed", err.Error())
			writeMappedErr(w, persistenceError(err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.logRejection(r, "record", "method_not_allowed", id)
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (h *Handler) allowMethods(w http.ResponseWriter, r *http.Request, operation string, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	h.logRejection(r, operation, "method_not_allowed", "")
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	return false
}

func (h *Handler) logRejection(r *http.Request, operation, reason, details string) {
	h.logger.Warn().
		Str("event", "http_request_rejected").
		Str("operation", operation).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reason", reason).
		Str("details", details).
		Str("remote", r.RemoteAddr).
		Msg("request rejected")
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		var syntaxErr *json.SyntaxError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxErr):
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON")
		case errors.As(err, &maxBytesErr):
			writeErr(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds max size")
		case errors.Is(err, theme.ErrUnknownDomain):
			writeMappedErr(w, err)
		case strings.Contains(err.Error(), "unknown field"):
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request contains unknown fields")
		default:
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON")
		}
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must contain exactly one JSON object")
		if err == nil {
			err = errors.New("trailing data after JSON object")
		}
		return err
	}
	return nil
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
