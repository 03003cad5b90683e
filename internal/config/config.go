package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
)

// ProviderConfig holds the app credentials registered with a social provider.
type ProviderConfig struct {
	AppID       string
	AppSecret   string
	RedirectURI string
}

func (p ProviderConfig) Enabled() bool {
	return p.AppID != "" && p.AppSecret != ""
}

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Token signing. Each purpose has its own key.
	JWTSecret        string
	JWTRefreshSecret string
	StateSecret      string
	TokenTTL         string
	RefreshTokenTTL  string

	// Social providers
	Facebook        ProviderConfig
	Instagram       ProviderConfig
	Google          ProviderConfig
	ProviderTimeout time.Duration

	// Server
	Port        string
	CORSOrigins string
	RedisURL    string

	// Observability
	SentryDSN string
	AppEnv    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load(getEnv("DOTENV_CONFIG_PATH", ".env"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "eventhub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		StateSecret:      getEnv("STATE_SECRET", ""),
		TokenTTL:         getEnv("TOKEN_TTL", "15m"),
		RefreshTokenTTL:  getEnv("REFRESH_TOKEN_TTL", "30d"),

		Facebook: ProviderConfig{
			AppID:       getEnv("FACEBOOK_APP_ID", ""),
			AppSecret:   getEnv("FACEBOOK_APP_SECRET", ""),
			RedirectURI: getEnv("FACEBOOK_REDIRECT_URI", ""),
		},
		Instagram: ProviderConfig{
			AppID:       getEnv("INSTAGRAM_APP_ID", ""),
			AppSecret:   getEnv("INSTAGRAM_APP_SECRET", ""),
			RedirectURI: getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		Google: ProviderConfig{
			AppID:       getEnv("GOOGLE_CLIENT_ID", ""),
			AppSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI: getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		ProviderTimeout: parseDuration(getEnv("PROVIDER_TIMEOUT", "10s")),

		Port:        getEnv("PORT", "4000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		RedisURL:    getEnv("REDIS_URL", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),
	}
}

// Validate reports every startup-fatal problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.DBPassword == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if _, err := services.ParseTTL(c.TokenTTL); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	if _, err := services.ParseTTL(c.RefreshTokenTTL); err != nil {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL: %w", err))
	}
	if !c.Facebook.Enabled() {
		errs = append(errs, errors.New("FACEBOOK_APP_ID and FACEBOOK_APP_SECRET are required"))
	}
	if !c.Instagram.Enabled() {
		errs = append(errs, errors.New("INSTAGRAM_APP_ID and INSTAGRAM_APP_SECRET are required"))
	}
	return errors.Join(errs...)
}

// StateSigningKey returns STATE_SECRET, or a key derived from JWT_SECRET so
// state tokens never share a key with access tokens.
func (c *Config) StateSigningKey() ([]byte, error) {
	if c.StateSecret != "" {
		return []byte(c.StateSecret), nil
	}
	if c.JWTSecret == "" {
		return nil, errors.New("no secret to derive the state key from")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(c.JWTSecret), nil, []byte("oauth-state"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive state key: %w", err)
	}
	return key, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
