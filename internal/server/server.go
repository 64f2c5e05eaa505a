// Package server runs the SSH and HTTP surfaces side by side.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"builder-platform/internal/config"
	"builder-platform/internal/domaintheme"
	"builder-platform/internal/router"
	"builder-platform/internal/theme"
	"builder-platform/internal/tui"
)

const (
	version         = "dev"
	shutdownTimeout = 10 * time.Second
)

// Options configures New.
type Options struct {
	// Chain wraps every SSH session, outermost first.
	Chain []router.Descriptor
	// HTTP serves the web surface. Nil disables the HTTP listener.
	HTTP   http.Handler
	Logger zerolog.Logger
}

// Runtime wires config, middleware and both listeners as a testable unit.
type Runtime struct {
	cfg           config.Config
	middlewareIDs []string
	ssh           *ssh.Server
	http          *http.Server
	logger        zerolog.Logger
}

func New(cfg config.Config, opts Options) (*Runtime, error) {
	logger := opts.Logger.With().Str("component", "server").Logger()

	// wish composes middleware with the last element outermost.
	chain := router.MiddlewareFromDescriptors(opts.Chain)
	middleware := []wish.Middleware{
		bubbletea.Middleware(SessionHandler(cfg, logger)),
		activeterm.Middleware(),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		middleware = append(middleware, chain[i])
	}

	sshServer, err := wish.NewServer(
		wish.WithAddress(cfg.SSHAddress()),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		cfg:           cfg,
		middlewareIDs: router.Names(opts.Chain),
		ssh:           sshServer,
		logger:        logger,
	}
	if opts.HTTP != nil {
		rt.http = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           opts.HTTP,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       cfg.IdleTimeout,
		}
	}
	return rt, nil
}

func (r *Runtime) MiddlewareIDs() []string {
	out := make([]string, len(r.middlewareIDs))
	copy(out, r.middlewareIDs)
	return out
}

// Address is the SSH listen address.
func (r *Runtime) Address() string {
	return r.ssh.Addr
}

// HTTPAddress is the HTTP listen address, empty when HTTP is disabled.
func (r *Runtime) HTTPAddress() string {
	if r.http == nil {
		return ""
	}
	return r.http.Addr
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives, or a listener
// fails. Both listeners are shut down before Run returns.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	g, gctx := errgroup.WithContext(ctx)

	r.logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("ssh_addr", r.Address()).
		Str("http_addr", r.HTTPAddress()).
		Strs("middleware", r.middlewareIDs).
		Str("host_key_path", r.cfg.HostKeyPath).
		Dur("idle_timeout", r.cfg.IdleTimeout).
		Int("max_sessions", r.cfg.MaxSessions).
		Msg("serving")

	g.Go(func() error {
		err := r.ssh.ListenAndServe()
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return err
	})
	if r.http != nil {
		g.Go(func() error {
			err := r.http.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		r.logger.Info().Str("event", "shutdown").Msg("stopping listeners")
		err := r.ssh.Shutdown(shutdownCtx)
		if r.http != nil {
			err = errors.Join(err, r.http.Shutdown(shutdownCtx))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// SessionHandler builds the home page model for a session that went through
// the router chain. Sessions without a theme scope are refused.
func SessionHandler(cfg config.Config, logger zerolog.Logger) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		sc, err := router.ScopeFrom(s)
		if err != nil {
			logger.Error().Err(err).Str("session", s.Context().SessionID()).Msg("session without theme scope")
			wish.Fatalln(s, "theme scope unavailable")
			return nil, nil
		}
		tc, err := domaintheme.Access(sc.Context())
		if err != nil {
			logger.Error().Err(err).Str("session", s.Context().SessionID()).Msg("session without theme context")
			wish.Fatalln(s, "theme scope unavailable")
			return nil, nil
		}

		pty, _, _ := s.Pty()
		model := tui.NewModel(tc, sc.Properties, tui.Options{
			Width:  pty.Window.Width,
			Height: pty.Window.Height,
			Scheme: cfg.ColorScheme,
			Render: theme.RenderOptions{
				Term:       pty.Term,
				ForceColor: cfg.ForceColor,
				ForceMono:  cfg.ForceMono,
			},
			Renderer: bubbletea.MakeRenderer(s),
		})
		return model, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
