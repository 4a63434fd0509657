package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported email providers
const (
	ProviderMailChannels = "mailchannels"
	ProviderGmail        = "gmail"
	ProviderResend       = "resend"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Security SecurityConfig `mapstructure:"security"`
	Email    EmailConfig    `mapstructure:"email"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration for the identity store
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	// BearerToken is the shared secret every caller must present.
	BearerToken  string             `mapstructure:"bearer_token"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the peer address is always the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies; a bare IP becomes a single-host prefix.
func (c SecurityConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	// AllowedOrigins lists permitted origins; "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email provider to use: "mailchannels", "gmail" or "resend".
	Provider      string `mapstructure:"provider"`
	SenderAddress string `mapstructure:"sender_address"`
	SenderName    string `mapstructure:"sender_name"`

	MailChannels MailChannelsConfig `mapstructure:"mailchannels"`
	Gmail        GmailEmailConfig   `mapstructure:"gmail"`
	Resend       ResendEmailConfig  `mapstructure:"resend"`
}

// MailChannelsConfig holds MailChannels transactional API configuration
type MailChannelsConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// APIKey is sent as X-Api-Key when set.
	APIKey string `mapstructure:"api_key"`
	// DryRun asks the provider to validate without delivering.
	DryRun bool `mapstructure:"dry_run"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// ResendEmailConfig holds Resend API configuration
type ResendEmailConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ReminderConfig holds reminder composition and dispatch settings
type ReminderConfig struct {
	// BrandURL is linked from the "A reminder from" line.
	BrandURL  string `mapstructure:"brand_url"`
	BrandName string `mapstructure:"brand_name"`
	LogoURL   string `mapstructure:"logo_url"`
	// Timezone is the IANA zone used to print the birthday date.
	Timezone        string        `mapstructure:"timezone"`
	LookupTimeout   time.Duration `mapstructure:"lookup_timeout"`
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
	// UniformStatus answers every failure with 200, as older callers expect.
	UniformStatus bool `mapstructure:"uniform_status"`
}

// Location resolves Timezone, falling back to UTC
func (c ReminderConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/birthdays")

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BIRTHDAYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error

	if c.Security.BearerToken == "" {
		errs = append(errs, errors.New("security.bearer_token is required"))
	}
	if c.Email.SenderAddress == "" {
		errs = append(errs, errors.New("email.sender_address is required"))
	}

	switch c.Email.Provider {
	case ProviderMailChannels:
		if c.Email.MailChannels.Endpoint == "" {
			errs = append(errs, errors.New("email.mailchannels.endpoint is required"))
		}
	case ProviderGmail:
		if c.Email.Gmail.CredentialsJSON == "" && c.Email.Gmail.RefreshToken == "" {
			errs = append(errs, errors.New("email.gmail needs credentials_json or refresh_token"))
		}
	case ProviderResend:
		if c.Email.Resend.APIKey == "" {
			errs = append(errs, errors.New("email.resend.api_key is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email provider %q", c.Email.Provider))
	}

	if c.Security.RateLimiting.Enabled && c.Security.RateLimiting.Limit <= 0 {
		errs = append(errs, errors.New("security.rate_limiting.limit must be positive"))
	}
	if _, err := c.Security.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("security.trusted_proxies: %w", err))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "identity")
	v.SetDefault("database.user", "birthdays")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Security defaults
	v.SetDefault("security.bearer_token", "")
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.rate_limiting.enabled", false)
	v.SetDefault("security.rate_limiting.limit", 60)
	v.SetDefault("security.rate_limiting.window", "1m")
	v.SetDefault("security.trusted_proxies", []string{})

	// Email defaults
	v.SetDefault("email.provider", ProviderMailChannels)
	v.SetDefault("email.sender_address", "reminder@birthdays.run")
	v.SetDefault("email.sender_name", "Birthday Reminders")
	v.SetDefault("email.mailchannels.endpoint", "https://api.mailchannels.net/tx/v1/send")
	v.SetDefault("email.mailchannels.api_key", "")
	v.SetDefault("email.mailchannels.dry_run", false)
	v.SetDefault("email.gmail.credentials_json", "")
	v.SetDefault("email.gmail.client_id", "")
	v.SetDefault("email.gmail.client_secret", "")
	v.SetDefault("email.gmail.refresh_token", "")
	v.SetDefault("email.resend.api_key", "")

	// Reminder defaults
	v.SetDefault("reminder.brand_url", "https://birthdays.run")
	v.SetDefault("reminder.brand_name", "Birthdays.run")
	v.SetDefault("reminder.logo_url", "https://birthdays.run/birthdays.svg")
	v.SetDefault("reminder.timezone", "UTC")
	v.SetDefault("reminder.lookup_timeout", "5s")
	v.SetDefault("reminder.dispatch_timeout", "10s")
	v.SetDefault("reminder.uniform_status", false)
}
