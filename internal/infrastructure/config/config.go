package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AllowedOrigins is either ["*"] or an explicit list of frontend origins.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*"`
	// JWTSecret enables bearer authentication on /analyse when set.
	JWTSecret string `env:"JWT_SECRET"`
	// RequireApplicantIdentity makes name and creditScore mandatory.
	RequireApplicantIdentity bool `env:"REQUIRE_APPLICANT_IDENTITY, default=false"`
	RateLimitPerMinute       int  `env:"RATE_LIMIT_PER_MINUTE,      default=30"`
	AuditWorkers             int  `env:"AUDIT_WORKERS,              default=2"`

	Scoring ScoringConfig
	LLM     LLMConfig
	Prompt  PromptConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type ScoringConfig struct {
	Endpoint string        `env:"ML_ENDPOINT,     required"`
	Timeout  time.Duration `env:"SCORING_TIMEOUT, default=10s"`
}

type LLMConfig struct {
	APIKey  string        `env:"LLM_API_KEY,  required"`
	Model   string        `env:"LLM_MODEL,    default=gemini-1.5-pro"`
	BaseURL string        `env:"LLM_BASE_URL"`
	Timeout time.Duration `env:"LLM_TIMEOUT,  default=30s"`
}

type PromptConfig struct {
	IncludeGreeting   bool   `env:"PROMPT_INCLUDE_GREETING,   default=false"`
	CurrencySymbol    string `env:"PROMPT_CURRENCY_SYMBOL"`
	RejectionGuidance string `env:"PROMPT_REJECTION_GUIDANCE, default=embedded_list"`
	MaxPoints         int    `env:"PROMPT_MAX_POINTS,         default=0"`
}

// MongoConfig enables the analysis audit trail when URI is set.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=loan_analysis"`
}

// RedisConfig enables rate limiting when Addr is set.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// legacyKeys maps canonical variable names to the names used by earlier
// deployments. The canonical name wins when both are set.
var legacyKeys = map[string]string{
	"LLM_API_KEY":     "api_key",
	"ML_ENDPOINT":     "ml_key",
	"ALLOWED_ORIGINS": "allowed_origins",
	"PORT":            "port",
}

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper, honouring the
// legacy variable names.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: legacyLookuper{next: l},
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}

type legacyLookuper struct {
	next envconfig.Lookuper
}

func (l legacyLookuper) Lookup(key string) (string, bool) {
	if v, ok := l.next.Lookup(key); ok {
		return v, true
	}
	if legacy, ok := legacyKeys[key]; ok {
		return l.next.Lookup(legacy)
	}
	return "", false
}

// AllowsAnyOrigin reports whether CORS is configured with a wildcard.
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
