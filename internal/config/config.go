package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"builder-platform/internal/theme"
)

const (
	envPrefix = "BUILDER"

	defaultHost            = "0.0.0.0"
	defaultPort            = 2222
	defaultHostKeyPath     = ".data/host_ed25519"
	defaultIdleTimeout     = 120 * time.Second
	defaultMaxSessions     = 32
	defaultHTTPAddr        = "0.0.0.0:8080"
	defaultRateLimitPerMin = 120
	defaultRateLimitBurst  = 20
	defaultDatabasePath    = ".data/builder.db"
	defaultEnvironment     = EnvProduction
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"

	maximumConfiguredSessions = 1024
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Keys shared by environment variables (BUILDER_ + upper-cased key with dots
// replaced by underscores), the optional config file and bound CLI flags.
const (
	KeySSHHost         = "ssh.host"
	KeySSHPort         = "ssh.port"
	KeySSHHostKeyPath  = "ssh.host_key_path"
	KeySSHIdleTimeout  = "ssh.idle_timeout"
	KeySSHMaxSessions  = "ssh.max_sessions"
	KeyHTTPAddr        = "http.addr"
	KeyRateLimitPerMin = "rate_limit.per_min"
	KeyRateLimitBurst  = "rate_limit.burst"
	KeyDefaultDomain   = "theme.default_domain"
	KeyColorScheme     = "theme.color_scheme"
	KeyForceColor      = "theme.force_color"
	KeyForceMono       = "theme.force_mono"
	KeyDatabasePath    = "database.path"
	KeyEnvironment     = "env"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Config captures startup settings for the builder service.
type Config struct {
	Host        string
	Port        int
	HostKeyPath string
	IdleTimeout time.Duration
	MaxSessions int

	HTTPAddr string

	RateLimitPerMin int
	RateLimitBurst  int

	DefaultDomain theme.Domain
	ColorScheme   theme.ColorScheme
	ForceColor    bool
	ForceMono     bool

	// DatabasePath is empty when persistence is disabled.
	DatabasePath string
	Environment  string

	LogLevel  string
	LogFormat string
}

// SSHAddress is host:port of the terminal surface.
func (c Config) SSHAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Development reports whether verbose development behaviour is enabled.
func (c Config) Development() bool {
	return c.Environment == EnvDevelopment
}

// NewViper returns a viper instance reading BUILDER_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML/TOML/JSON config file into v. Environment variables
// and changed flags still take precedence.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads runtime configuration from environment variables only.
func LoadFromEnv() (Config, error) {
	return Load(NewViper())
}

// Load resolves and validates every setting from v.
func Load(v *viper.Viper) (Config, error) {
	r := reader{v: v}

	host, err := r.requiredOrDefault(KeySSHHost, defaultHost)
	if err != nil {
		return Config{}, err
	}

	port, err := r.intInRange(KeySSHPort, defaultPort, 1, 65535)
	if err != nil {
		return Config{}, err
	}

	hostKeyPath, err := r.requiredOrDefault(KeySSHHostKeyPath, defaultHostKeyPath)
	if err != nil {
		return Config{}, err
	}
	cleanHostKeyPath := filepath.Clean(hostKeyPath)
	if cleanHostKeyPath == "." {
		return Config{}, fmt.Errorf("%s must not resolve to current directory", envName(KeySSHHostKeyPath))
	}

	idleTimeout, err := r.duration(KeySSHIdleTimeout, defaultIdleTimeout)
	if err != nil {
		return Config{}, err
	}

	maxSessions, err := r.intInRange(KeySSHMaxSessions, defaultMaxSessions, 1, maximumConfiguredSessions)
	if err != nil {
		return Config{}, err
	}

	httpAddr, err := r.requiredOrDefault(KeyHTTPAddr, defaultHTTPAddr)
	if err != nil {
		return Config{}, err
	}

	perMin, err := r.intInRange(KeyRateLimitPerMin, defaultRateLimitPerMin, 1, 100000)
	if err != nil {
		return Config{}, err
	}

	burst, err := r.intInRange(KeyRateLimitBurst, defaultRateLimitBurst, 1, 10000)
	if err != nil {
		return Config{}, err
	}

	domain := theme.DefaultDomain
	if raw, ok := r.lookup(KeyDefaultDomain); ok {
		domain, err = theme.ParseDomain(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envName(KeyDefaultDomain), err)
		}
	}

	scheme := theme.DefaultScheme
	if raw, ok := r.lookup(KeyColorScheme); ok {
		scheme, err = theme.ParseColorScheme(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envName(KeyColorScheme), err)
		}
	}

	forceColor, err := r.boolean(KeyForceColor, false)
	if err != nil {
		return Config{}, err
	}
	forceMono, err := r.boolean(KeyForceMono, false)
	if err != nil {
		return Config{}, err
	}

	// An explicitly empty database path disables persistence.
	databasePath := defaultDatabasePath
	if raw, ok := r.lookup(KeyDatabasePath); ok {
		databasePath = strings.TrimSpace(raw)
		if databasePath != "" && databasePath != ":memory:" {
			databasePath = filepath.Clean(databasePath)
		}
	}

	environment, err := r.oneOf(KeyEnvironment, defaultEnvironment, EnvDevelopment, EnvProduction, EnvTest)
	if err != nil {
		return Config{}, err
	}

	logLevel, err := r.oneOf(KeyLogLevel, defaultLogLevel, "trace", "debug", "info", "warn", "error")
	if err != nil {
		return Config{}, err
	}
	logFormat, err := r.oneOf(KeyLogFormat, defaultLogFormat, "console", "json")
	if err != nil {
		return Config{}, err
	}

	return Config{
		Host:            host,
		Port:            port,
		HostKeyPath:     cleanHostKeyPath,
		IdleTimeout:     idleTimeout,
		MaxSessions:     maxSessions,
		HTTPAddr:        httpAddr,
		RateLimitPerMin: perMin,
		RateLimitBurst:  burst,
		DefaultDomain:   domain,
		ColorScheme:     scheme,
		ForceColor:      forceColor,
		ForceMono:       forceMono,
		DatabasePath:    databasePath,
		Environment:     environment,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
	}, nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

type reader struct {
	v *viper.Viper
}

func (r reader) lookup(key string) (string, bool) {
	if !r.v.IsSet(key) {
		return "", false
	}
	return r.v.GetString(key), true
}

func (r reader) requiredOrDefault(key, fallback string) (string, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", envName(key))
	}

	return trimmed, nil
}

func (r reader) intInRange(key string, fallback, min, max int) (int, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", envName(key), err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", envName(key), min, max)
	}

	return parsed, nil
}

func (r reader) duration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", envName(key), err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", envName(key))
	}

	return parsed, nil
}

func (r reader) boolean(key string, fallback bool) (bool, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", envName(key), err)
	}
	return parsed, nil
}

func (r reader) oneOf(key, fallback string, allowed ...string) (string, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return fallback, nil
	}

	norm := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if norm == candidate {
			return norm, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s", envName(key), strings.Join(allowed, ", "))
}
