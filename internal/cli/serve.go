package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"builder-platform/internal/config"
	"builder-platform/internal/logging"
	"builder-platform/internal/ratelimit"
	"builder-platform/internal/router"
	"builder-platform/internal/server"
	"builder-platform/internal/store"
	"builder-platform/internal/web"
)

// flagKeys maps serve flags onto config keys.
var flagKeys = map[string]string{
	"ssh-host":     config.KeySSHHost,
	"ssh-port":     config.KeySSHPort,
	"host-key":     config.KeySSHHostKeyPath,
	"idle-timeout": config.KeySSHIdleTimeout,
	"max-sessions": config.KeySSHMaxSessions,
	"http-addr":    config.KeyHTTPAddr,
	"domain":       config.KeyDefaultDomain,
	"scheme":       config.KeyColorScheme,
	"force-color":  config.KeyForceColor,
	"force-mono":   config.KeyForceMono,
	"database":     config.KeyDatabasePath,
	"env":          config.KeyEnvironment,
	"log-level":    config.KeyLogLevel,
	"log-format":   config.KeyLogFormat,
	"rate-per-min": config.KeyRateLimitPerMin,
	"rate-burst":   config.KeyRateLimitBurst,
}

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the home page over SSH and HTTP",
		Long: `Serve the domain-themed home page.

Settings come from flags, then BUILDER_* environment variables, then the
optional --config file.

Examples:
  # SSH on :2222 and HTTP on :8080
  builder serve

  # Start every session on the culinary domain, without persistence
  builder serve --domain culinary --database ""
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			if err := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			logger := logging.Logger()

			opts := web.Options{
				DefaultDomain: cfg.DefaultDomain,
				DefaultScheme: cfg.ColorScheme,
				Limiter:       ratelimit.New(cfg.RateLimitPerMin, cfg.RateLimitBurst),
				Logger:        logger,
			}
			if cfg.DatabasePath != "" {
				db, err := store.Shared(cmd.Context(), store.Options{Path: cfg.DatabasePath, Verbose: cfg.Development()})
				if err != nil {
					return fmt.Errorf("open database: %w", err)
				}
				defer db.Close()
				opts.Records = store.NewRecordRepository(db)
			}

			chain := router.DefaultChain(router.ChainOptions{
				Limiter:       opts.Limiter,
				MaxSessions:   cfg.MaxSessions,
				DefaultDomain: cfg.DefaultDomain,
				Logger:        logger,
			})
			rt, err := server.New(cfg, server.Options{
				Chain:  chain,
				HTTP:   web.NewHandler(opts).Routes(),
				Logger: logger,
			})
			if err != nil {
				return fmt.Errorf("build runtime: %w", err)
			}
			return rt.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (yaml, toml or json)")
	f.String("ssh-host", "", "SSH listen host")
	f.Int("ssh-port", 0, "SSH listen port")
	f.String("host-key", "", "SSH host key path")
	f.Duration("idle-timeout", 0, "SSH idle timeout")
	f.Int("max-sessions", 0, "maximum concurrent SSH sessions")
	f.String("http-addr", "", "HTTP listen address")
	f.String("domain", "", "initial domain (automotive, culinary, woodworking, custom)")
	f.String("scheme", "", "colour scheme (dark, light, system)")
	f.Bool("force-color", false, "paint accents even when TERM lacks colour")
	f.Bool("force-mono", false, "never paint accents")
	f.String("database", "", `SQLite path; "" disables persistence`)
	f.String("env", "", "environment (development, production, test)")
	f.String("log-level", "", "log level")
	f.String("log-format", "", "log format (console, json)")
	f.Int("rate-per-min", 0, "requests per minute per client")
	f.Int("rate-burst", 0, "burst size per client")
	return cmd
}

// loadConfig resolves settings with flag > env > file precedence. Only flags
// the user changed override the lower layers.
func loadConfig(flags *pflag.FlagSet, configPath string) (config.Config, error) {
	v := config.NewViper()
	if configPath != "" {
		if err := config.ReadFile(v, configPath); err != nil {
			return config.Config{}, err
		}
	}
	if err := bindFlags(v, flags); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}
