package router

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/rs/zerolog"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/ratelimit"
	"builder-platform/internal/theme"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	scopeKey    contextKey = "theme-scope"
)

// Identity is the routing decision taken for a session.
type Identity struct {
	User   string
	Domain theme.Domain
	// Requested is true when the SSH user named a domain.
	Requested bool
}

// Scope is the theme state owned by one session.
type Scope struct {
	Identity   Identity
	Properties *domaintheme.Properties
	ctx        context.Context
}

// Context carries the session's domaintheme.Context; pass it to
// domaintheme.Access.
func (s *Scope) Context() context.Context { return s.ctx }

// IdentityFrom returns the routing decision stored on s.
func IdentityFrom(s ssh.Session) (Identity, bool) {
	id, ok := s.Context().Value(identityKey).(Identity)
	return id, ok
}

// ScopeFrom returns the theme scope of s or domaintheme.ErrUsedOutsideScope
// when the theme-scope middleware did not run.
func ScopeFrom(s ssh.Session) (*Scope, error) {
	sc, ok := s.Context().Value(scopeKey).(*Scope)
	if !ok || sc == nil {
		return nil, domaintheme.ErrUsedOutsideScope
	}
	return sc, nil
}

// RateLimiting rejects sessions whose remote host exhausted its bucket.
func RateLimiting(limiter *ratelimit.Limiter, logger zerolog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			key := remoteHost(s.RemoteAddr())
			if !limiter.Allow(key) {
				logger.Warn().Str("event", "rate_limit_throttled").Str("surface", "ssh").Str("remote", key).Msg("session throttled")
				_, _ = s.Write([]byte("rate limit exceeded\n"))
				_ = s.Exit(1)
				return
			}
			next(s)
		}
	}
}

// MaxSessions caps concurrent sessions. A slot is freed when the handler
// returns, panics, or the session context ends, whichever happens first.
// Non-positive limit disables the cap. A recovered panic is logged as
// session_panic and the session ends.
func MaxSessions(limit int, logger zerolog.Logger) wish.Middleware {
	if limit <= 0 {
		return func(next ssh.Handler) ssh.Handler { return next }
	}
	sem := make(chan struct{}, limit)

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			select {
			case sem <- struct{}{}:
			default:
				_, _ = s.Write([]byte("max sessions exceeded\n"))
				_ = s.Exit(1)
				return
			}

			var once sync.Once
			release := func() { once.Do(func() { <-sem }) }
			done := make(chan struct{})
			go func() {
				select {
				case <-s.Context().Done():
					release()
				case <-done:
				}
			}()
			defer func() {
				close(done)
				release()
				if r := recover(); r != nil {
					logger.Error().
						Str("event", "session_panic").
						Str("session", s.Context().SessionID()).
						Str("remote", remoteHost(s.RemoteAddr())).
						Interface("panic", r).
						Msg("session handler panicked")
				}
			}()

			next(s)
		}
	}
}

// DomainRouting picks the initial domain from the SSH user name. Users that
// do not name a domain start on fallback.
func DomainRouting(fallback theme.Domain) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			id := Identity{User: s.User(), Domain: fallback}
			if d, err := theme.ParseDomain(s.User()); err == nil {
				id.Domain = d
				id.Requested = true
			}
			s.Context().SetValue(identityKey, id)
			next(s)
		}
	}
}

// ThemeScope creates the session's theme Context, seeded from the routing
// decision, and publishes it on the session context.
func ThemeScope(logger zerolog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			if _, err := ScopeFrom(s); err == nil {
				logger.Error().Err(domaintheme.ErrAlreadyInitialized).Str("session", s.Context().SessionID()).Msg("nested theme scope")
				_ = s.Exit(1)
				return
			}

			id, ok := IdentityFrom(s)
			if !ok {
				id = Identity{User: s.User(), Domain: theme.DefaultDomain}
			}

			props := domaintheme.NewProperties()
			sessionID := s.Context().SessionID()
			ctx, _, err := domaintheme.Initialize(s.Context(), props,
				domaintheme.WithDomain(id.Domain),
				domaintheme.WithObserver(func(prev, next domaintheme.Snapshot) {
					logger.Info().
						Str("event", "domain_selected").
						Str("session", sessionID).
						Str("from", prev.Domain.Slug()).
						Str("to", next.Domain.Slug()).
						Msg("domain changed")
				}),
			)
			if err != nil {
				logger.Error().Err(err).Str("session", sessionID).Msg("theme scope")
				_ = s.Exit(1)
				return
			}

			s.Context().SetValue(scopeKey, &Scope{Identity: id, Properties: props, ctx: ctx})
			next(s)
		}
	}
}

// AccessLog records session start and end.
func AccessLog(logger zerolog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			started := time.Now()
			domain := ""
			if id, ok := IdentityFrom(s); ok {
				domain = id.Domain.Slug()
			}
			logger.Info().
				Str("event", "session_start").
				Str("session", s.Context().SessionID()).
				Str("user", s.User()).
				Str("remote", remoteHost(s.RemoteAddr())).
				Str("domain", domain).
				Msg("session opened")

			next(s)

			logger.Info().
				Str("event", "session_end").
				Str("session", s.Context().SessionID()).
				Dur("duration", time.Since(started)).
				Msg("session closed")
		}
	}
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
