package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultEnvironment    = "dev"
	defaultBackendURL     = "https://ecocycle-backend-xoli.onrender.com"
	defaultBackendTimeout = 10 * time.Second
	defaultTokenScheme    = "Token"
	defaultOrdersPath     = "/orders/"
	defaultWebPort        = "8080"
	defaultAdminAddr      = ":8081"
	defaultAdminBasePath  = "/admin"
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	minSessionKeyLength   = 32
)

// Config captures runtime configuration shared by the storefront, the admin console and the CLI.
type Config struct {
	Environment string
	LogLevel    string
	Backend     BackendConfig
	Web         WebConfig
	Admin       AdminConfig
	Session     SessionConfig
	Images      ImageConfig
}

// BackendConfig points at the remote REST API.
type BackendConfig struct {
	BaseURL     string
	Timeout     time.Duration
	TokenScheme string
	OrdersPath  string
}

// WebConfig configures the storefront server.
type WebConfig struct {
	Addr         string
	TemplatesDir string
	PublicDir    string
}

// AdminConfig configures the admin console.
type AdminConfig struct {
	Addr             string
	BasePath         string
	EnvironmentLabel string
}

// SessionConfig holds cookie signing material.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
}

// ImageConfig overrides the image resolver prefixes.
type ImageConfig struct {
	LocalPrefix string
	MediaPrefix string
	Placeholder string
}

// IsProduction reports whether the deployment runs with production safeguards.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Environment) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	webAddr := stringWithDefault(lookup, "ECOCYCLE_WEB_ADDR", "")
	if webAddr == "" {
		webAddr = ":" + stringWithDefault(lookup, "PORT", defaultWebPort)
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "ECOCYCLE_ENV", defaultEnvironment)),
		LogLevel:    strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", "info")),
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(stringWithDefault(lookup, "ECOCYCLE_API_URL", defaultBackendURL), "/"),
			Timeout:     durationWithDefault(lookup, "ECOCYCLE_BACKEND_TIMEOUT", defaultBackendTimeout),
			TokenScheme: stringWithDefault(lookup, "ECOCYCLE_TOKEN_SCHEME", defaultTokenScheme),
			OrdersPath:  stringWithDefault(lookup, "ECOCYCLE_ORDERS_PATH", defaultOrdersPath),
		},
		Web: WebConfig{
			Addr:         webAddr,
			TemplatesDir: stringWithDefault(lookup, "ECOCYCLE_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "ECOCYCLE_PUBLIC_DIR", defaultPublicDir),
		},
		Admin: AdminConfig{
			Addr:             stringWithDefault(lookup, "ECOCYCLE_ADMIN_ADDR", defaultAdminAddr),
			BasePath:         stringWithDefault(lookup, "ECOCYCLE_ADMIN_BASE_PATH", defaultAdminBasePath),
			EnvironmentLabel: stringWithDefault(lookup, "ECOCYCLE_ADMIN_ENV_LABEL", ""),
		},
		Session: SessionConfig{
			HashKey:  []byte(stringWithDefault(lookup, "ECOCYCLE_SESSION_HASH_KEY", "")),
			BlockKey: []byte(stringWithDefault(lookup, "ECOCYCLE_SESSION_BLOCK_KEY", "")),
		},
		Images: ImageConfig{
			LocalPrefix: stringWithDefault(lookup, "ECOCYCLE_IMAGES_PREFIX", ""),
			MediaPrefix: stringWithDefault(lookup, "ECOCYCLE_MEDIA_PREFIX", ""),
			Placeholder: stringWithDefault(lookup, "ECOCYCLE_PLACEHOLDER_PATH", ""),
		},
	}
	cfg.Session.Secure = boolWithDefault(lookup, "ECOCYCLE_SESSION_SECURE", cfg.IsProduction())
	if cfg.Admin.EnvironmentLabel == "" {
		cfg.Admin.EnvironmentLabel = environmentLabel(cfg.Environment)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	if len(cfg.Session.HashKey) == 0 {
		key, err := ephemeralKey()
		if err != nil {
			return Config{}, err
		}
		cfg.Session.HashKey = key
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	base := cfg.Backend.BaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		invalid = append(invalid, "Backend.BaseURL")
	}
	if cfg.Backend.Timeout <= 0 {
		invalid = append(invalid, "Backend.Timeout")
	}
	if strings.TrimSpace(cfg.Backend.TokenScheme) == "" {
		invalid = append(invalid, "Backend.TokenScheme")
	}
	if cfg.IsProduction() && len(cfg.Session.HashKey) < minSessionKeyLength {
		invalid = append(invalid, "Session.HashKey")
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		invalid = append(invalid, "Session.BlockKey")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func ephemeralKey() ([]byte, error) {
	key := make([]byte, minSessionKeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("config: generate session key: %w", err)
	}
	return key, nil
}

func environmentLabel(env string) string {
	switch env {
	case "prod", "production":
		return "Production"
	case "stg", "staging":
		return "Staging"
	default:
		return "Development"
	}
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
