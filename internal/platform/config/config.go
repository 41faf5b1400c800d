package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	defaultJWTSecret     = "a-very-secret-key-should-be-longer-and-random"
	defaultRefreshSecret = "default_insecure_refresh_secret_please_change_this_!@#$"
)

// TokenConfig holds the signing material and lifetimes used by the token codec.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Validate checks that both signing domains are usable and separated.
func (c TokenConfig) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("access and refresh token secrets must be set")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// CookieConfig controls how the refresh token cookie is written.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
	// InBody also returns the refresh token in JSON responses for clients without a cookie jar.
	InBody bool
}

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StorageDriver string
	DatabaseURL   string
	RunMigrations bool
	MigrationsURL string

	Token  TokenConfig
	Cookie CookieConfig

	// External identity providers
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AppleAudience      string
	AppleKeysURL       string

	// Password reset delivery
	PasswordResetURLBase string
	MailFrom             string
	SMTPAddr             string
	SMTPUsername         string
	SMTPPassword         string

	AuthRateLimit      string
	CORSAllowedOrigins []string
	PosthogAPIKey      string

	// Unresolved product decisions, both off by default.
	RevokeSessionsOnReset bool
	ConsumeResetTokens    bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "2h")
	v.SetDefault("JWT_ISSUER", "food-rescue-app")
	v.SetDefault("REFRESH_TOKEN_SECRET", defaultRefreshSecret)
	v.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	v.SetDefault("REFRESH_TOKEN_COOKIE_NAME", "refresh_token")
	v.SetDefault("REFRESH_TOKEN_COOKIE_PATH", "/")
	v.SetDefault("REFRESH_TOKEN_COOKIE_SECURE", true)
	v.SetDefault("REFRESH_TOKEN_IN_BODY", true)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("APPLE_AUDIENCE", "host.exp.Exponent")
	v.SetDefault("APPLE_KEYS_URL", "https://appleid.apple.com/auth/keys")
	v.SetDefault("PASSWORD_RESET_URL_BASE", "http://localhost:8081/auth-tabs/reset/")
	v.SetDefault("MAIL_FROM", "from@example.com")
	v.SetDefault("SMTP_ADDR", "")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("AUTH_RATE_LIMIT", "10-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8081")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("AUTH_REVOKE_SESSIONS_ON_RESET", false)
	v.SetDefault("AUTH_CONSUME_RESET_TOKENS", false)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	accessTTL, err := time.ParseDuration(v.GetString("JWT_EXPIRY_DURATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DURATION: %w", err)
	}
	refreshTTL, err := time.ParseDuration(v.GetString("REFRESH_TOKEN_EXPIRY_DURATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRY_DURATION: %w", err)
	}

	cfg := &Config{
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:   v.GetString("PGSQL_URL"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		MigrationsURL: v.GetString("MIGRATIONS_PATH"),
		Token: TokenConfig{
			AccessSecret:  v.GetString("JWT_SECRET"),
			RefreshSecret: v.GetString("REFRESH_TOKEN_SECRET"),
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
			Issuer:        v.GetString("JWT_ISSUER"),
		},
		Cookie: CookieConfig{
			Name:   v.GetString("REFRESH_TOKEN_COOKIE_NAME"),
			Path:   v.GetString("REFRESH_TOKEN_COOKIE_PATH"),
			Secure: v.GetBool("REFRESH_TOKEN_COOKIE_SECURE"),
			InBody: v.GetBool("REFRESH_TOKEN_IN_BODY"),
		},
		GoogleClientID:        v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:    v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:     v.GetString("GOOGLE_REDIRECT_URL"),
		AppleAudience:         v.GetString("APPLE_AUDIENCE"),
		AppleKeysURL:          v.GetString("APPLE_KEYS_URL"),
		PasswordResetURLBase:  v.GetString("PASSWORD_RESET_URL_BASE"),
		MailFrom:              v.GetString("MAIL_FROM"),
		SMTPAddr:              v.GetString("SMTP_ADDR"),
		SMTPUsername:          v.GetString("SMTP_USERNAME"),
		SMTPPassword:          v.GetString("SMTP_PASSWORD"),
		AuthRateLimit:         v.GetString("AUTH_RATE_LIMIT"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PosthogAPIKey:         v.GetString("POSTHOG_API_KEY"),
		RevokeSessionsOnReset: v.GetBool("AUTH_REVOKE_SESSIONS_ON_RESET"),
		ConsumeResetTokens:    v.GetBool("AUTH_CONSUME_RESET_TOKENS"),
	}

	if err := cfg.Token.Validate(); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("PGSQL_URL must be set when STORAGE_DRIVER=postgres")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.IsProduction {
		if cfg.Token.AccessSecret == defaultJWTSecret || cfg.Token.RefreshSecret == defaultRefreshSecret {
			return nil, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must be set in production")
		}
	} else if cfg.Token.AccessSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in will not function.")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
