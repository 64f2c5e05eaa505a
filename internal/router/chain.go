// Package router assembles the SSH middleware chain that turns a raw session
// into a themed scope.
package router

import (
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/rs/zerolog"

	"builder-platform/internal/ratelimit"
	"builder-platform/internal/theme"
)

// Descriptor names one middleware so startup logs and tests can inspect the
// chain order.
type Descriptor struct {
	Name       string
	Middleware wish.Middleware
}

// ChainOptions configures DefaultChain.
type ChainOptions struct {
	// Limiter is shared with the HTTP surface. Nil builds a private one.
	Limiter       *ratelimit.Limiter
	MaxSessions   int
	DefaultDomain theme.Domain
	Logger        zerolog.Logger
}

// DefaultChain returns the session chain, outermost first: rate limiting,
// session cap, requested-domain routing, theme scope, access logging.
func DefaultChain(opts ChainOptions) []Descriptor {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.New(0, 0)
	}
	logger := opts.Logger.With().Str("component", "router").Logger()

	return []Descriptor{
		{Name: "rate-limit", Middleware: RateLimiting(limiter, logger)},
		{Name: "max-sessions", Middleware: MaxSessions(opts.MaxSessions, logger)},
		{Name: "domain-routing", Middleware: DomainRouting(opts.DefaultDomain)},
		{Name: "theme-scope", Middleware: ThemeScope(logger)},
		{Name: "access-log", Middleware: AccessLog(logger)},
	}
}

// MiddlewareFromDescriptors strips the names off chain.
func MiddlewareFromDescriptors(chain []Descriptor) []wish.Middleware {
	out := make([]wish.Middleware, 0, len(chain))
	for _, d := range chain {
		if d.Middleware != nil {
			out = append(out, d.Middleware)
		}
	}
	return out
}

// Names lists the descriptor names in order.
func Names(chain []Descriptor) []string {
	out := make([]string, 0, len(chain))
	for _, d := range chain {
		out = append(out, d.Name)
	}
	return out
}

// Wrap applies chain around h with chain[0] outermost.
func Wrap(h ssh.Handler, chain []Descriptor) ssh.Handler {
	mw := MiddlewareFromDescriptors(chain)
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
