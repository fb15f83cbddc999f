package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	minSecretBytes = 32
)

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslmode"`
	MaxOpenConns   int           `yaml:"max_open_conns"`
	MaxIdleConns   int           `yaml:"max_idle_conns"`
	ConnMaxIdle    time.Duration `yaml:"conn_max_idle"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ConnectRetries int           `yaml:"connect_retries"`
}

// DSN returns URL when set, otherwise a key/value DSN built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, int(c.ConnectTimeout.Seconds()),
	)
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type QuotaConfig struct {
	DefaultAPICalls int  `yaml:"default_api_calls"`
	Enforce         bool `yaml:"enforce"`
}

type RateLimitConfig struct {
	RedisURL    string        `yaml:"redis_url"`
	MaxRequests int64         `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

func (c RateLimitConfig) Enabled() bool {
	return c.RedisURL != "" && c.MaxRequests > 0
}

type GeneratorConfig struct {
	Provider      string        `yaml:"provider"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
	GeminiModel   string        `yaml:"gemini_model"`
	Timeout       time.Duration `yaml:"timeout"`
}

type StripeConfig struct {
	Key           string `yaml:"key"`
	PriceID       string `yaml:"price_id"`
	WebhookSecret string `yaml:"webhook_secret"`
	TopUpCalls    int    `yaml:"topup_calls"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

func (c StripeConfig) Enabled() bool {
	return c.Key != "" && c.WebhookSecret != "" && c.PriceID != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Port           string          `yaml:"port"`
	StoreDriver    string          `yaml:"store_driver"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Database       DatabaseConfig  `yaml:"database"`
	Auth           AuthConfig      `yaml:"auth"`
	Quota          QuotaConfig     `yaml:"quota"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Generator      GeneratorConfig `yaml:"generator"`
	Stripe         StripeConfig    `yaml:"stripe"`
	Log            LogConfig       `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		StoreDriver: StoreDriverPostgres,
		Database: DatabaseConfig{
			Host:           "127.0.0.1",
			Port:           "5432",
			User:           "postgres",
			Name:           "postgres",
			SSLMode:        "disable",
			MaxOpenConns:   20,
			MaxIdleConns:   5,
			ConnMaxIdle:    30 * time.Second,
			ConnectTimeout: 5 * time.Second,
			ConnectRetries: 10,
		},
		Auth: AuthConfig{
			TokenTTL:     time.Hour,
			CookieSecure: true,
		},
		Quota: QuotaConfig{
			DefaultAPICalls: 20,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 100,
			Window:      time.Minute,
		},
		Generator: GeneratorConfig{
			Provider:      ProviderOpenAI,
			OpenAIModel:   "gpt-4o-mini",
			OpenAIBaseURL: "https://api.openai.com/v1",
			GeminiModel:   "gemini-2.0-flash",
			Timeout:       30 * time.Second,
		},
		Stripe: StripeConfig{
			TopUpCalls: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .env (if present), then the optional YAML file at path, then
// environment overrides. Callers validate what their command needs.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envBindings maps environment variables onto yaml paths of Config.
var envBindings = []struct {
	key  string
	path string
}{
	{"PORT", "port"},
	{"STORE_DRIVER", "store_driver"},
	{"ALLOWED_ORIGINS", "allowed_origins"},

	{"DATABASE_URL", "database.url"},
	{"DB_HOST", "database.host"},
	{"DB_PORT", "database.port"},
	{"DB_USER", "database.user"},
	{"DB_PASSWORD", "database.password"},
	{"DB_NAME", "database.name"},
	{"DB_SSLMODE", "database.sslmode"},
	{"DB_MAX_OPEN_CONNS", "database.max_open_conns"},
	{"DB_CONNECT_RETRIES", "database.connect_retries"},

	{"JWT_SECRET", "auth.jwt_secret"},
	{"TOKEN_TTL", "auth.token_ttl"},
	{"COOKIE_SECURE", "auth.cookie_secure"},

	{"DEFAULT_API_CALLS", "quota.default_api_calls"},
	{"QUOTA_ENFORCE", "quota.enforce"},

	{"REDIS_URL", "rate_limit.redis_url"},
	{"RATE_LIMIT_MAX", "rate_limit.max_requests"},
	{"RATE_LIMIT_WINDOW", "rate_limit.window"},

	{"GENERATOR_PROVIDER", "generator.provider"},
	{"OPENAI_API_KEY", "generator.openai_api_key"},
	{"OPENAI_MODEL", "generator.openai_model"},
	{"OPENAI_BASE_URL", "generator.openai_base_url"},
	{"GEMINI_API_KEY", "generator.gemini_api_key"},
	{"GEMINI_MODEL", "generator.gemini_model"},
	{"GENERATE_TIMEOUT", "generator.timeout"},

	{"STRIPE_KEY", "stripe.key"},
	{"STRIPE_PRICE_ID", "stripe.price_id"},
	{"STRIPE_WEBHOOK_SECRET", "stripe.webhook_secret"},
	{"STRIPE_TOPUP_CALLS", "stripe.topup_calls"},
	{"STRIPE_SUCCESS_URL", "stripe.success_url"},
	{"STRIPE_CANCEL_URL", "stripe.cancel_url"},

	{"LOG_LEVEL", "log.level"},
	{"LOG_FORMAT", "log.format"},
}

// applyEnv decodes each set, non-empty variable onto c one at a time so a
// bad value is reported under its variable name.
func (c *Config) applyEnv() error {
	var errs []error
	for _, b := range envBindings {
		v, ok := os.LookupEnv(b.key)
		if !ok || v == "" {
			continue
		}
		if err := decodeInto(c, nest(b.path, v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.key, err))
		}
	}
	c.AllowedOrigins = compact(c.AllowedOrigins)
	return errors.Join(errs...)
}

// nest turns "a.b" and v into {"a": {"b": v}}.
func nest(path, v string) map[string]any {
	keys := strings.Split(path, ".")
	var out any = v
	for i := len(keys) - 1; i >= 0; i-- {
		out = map[string]any{keys[i]: out}
	}
	return out.(map[string]any)
}

func decodeInto(cfg *Config, input map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		// replace slices instead of merging element-wise into the YAML value
		ZeroFields: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(input)
}

func compact(list []string) []string {
	var out []string
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	errs := c.storageErrors()

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.Auth.JWTSecret) < minSecretBytes {
		slog.Warn("JWT_SECRET is shorter than recommended", "min_bytes", minSecretBytes)
	}

	switch c.Generator.Provider {
	case ProviderOpenAI:
		if c.Generator.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderGemini:
		if c.Generator.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.Generator.Provider))
	}

	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Generator.Timeout <= 0 {
		errs = append(errs, errors.New("GENERATE_TIMEOUT must be positive"))
	}
	if c.Stripe.TopUpCalls < 1 {
		errs = append(errs, errors.New("STRIPE_TOPUP_CALLS must be at least 1"))
	}

	return errors.Join(errs...)
}

// ValidateStorage checks only what the migrate and create-admin commands use.
func (c *Config) ValidateStorage() error {
	return errors.Join(c.storageErrors()...)
}

func (c *Config) storageErrors() []error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.Quota.DefaultAPICalls < 1 {
		errs = append(errs, errors.New("DEFAULT_API_CALLS must be at least 1"))
	}

	return errs
}
