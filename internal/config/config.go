package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/sethvargo/go-envconfig"
)

// Mail transports.
const (
	MailSMTP = "smtp"
	MailNATS = "nats"
	MailLog  = "log"
)

// Config holds runtime configuration for the boardauth service.
type Config struct {
	Addr     string `env:"ADDR,default=:8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	AccessTokenTTL             time.Duration `env:"AUTH_ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenDays           int           `env:"AUTH_REFRESH_TOKEN_EXPIRATION_DAYS,default=14"`
	VerificationCodeTTLSeconds int           `env:"AUTH_VERIFICATION_CODE_TTL_SECONDS,default=210"`
	ResetTokenTTLSeconds       int           `env:"AUTH_RESET_TOKEN_TTL_SECONDS,default=1800"`
	Secret                     string        `env:"AUTH_SECRET"`
	CookieSameSite             string        `env:"AUTH_COOKIE_SAME_SITE,default=lax"`
	CookieSecure               bool          `env:"AUTH_COOKIE_SECURE,default=true"`
	ResetPasswordRedirect      string        `env:"RESET_PASSWORD_REDIRECT_URL"`

	RedisAddr      string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB,default=0"`
	StoreOpTimeout time.Duration `env:"STORE_OP_TIMEOUT,default=2s"`

	DatabaseURL string `env:"DATABASE_URL"`

	MailTransport string `env:"MAIL_TRANSPORT,default=smtp"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      string `env:"SMTP_PORT,default=587"`
	SMTPFrom      string `env:"SMTP_FROM"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPassword  string `env:"SMTP_PASS"`
	NATSURL       string `env:"NATS_URL"`
	NATSStream    string `env:"NATS_STREAM,default=BOARDAUTH_MAIL"`

	AllowedOrigins []string `env:"CORS_ORIGINS,default=http://localhost:3000"`
	OTLPEndpoint   string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads variables through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings needed outside development mode.
func (c Config) Validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 bytes")
	}
	if c.ResetPasswordRedirect == "" {
		return fmt.Errorf("RESET_PASSWORD_REDIRECT_URL is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := c.SameSite(); err != nil {
		return err
	}
	switch c.MailTransport {
	case MailSMTP:
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required for smtp mail")
		}
	case MailNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for nats mail")
		}
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required for the nats mail relay")
		}
	case MailLog:
	default:
		return fmt.Errorf("unknown MAIL_TRANSPORT %q", c.MailTransport)
	}
	return nil
}

// SameSite maps AUTH_COOKIE_SAME_SITE to a cookie mode.
func (c Config) SameSite() (http.SameSite, error) {
	switch strings.ToLower(c.CookieSameSite) {
	case "lax", "":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("AUTH_COOKIE_SAME_SITE must be lax, strict or none")
	}
}

// Engine projects the service settings onto an Engine configuration.
func (c Config) Engine() boardauth.Config {
	cfg := boardauth.DefaultConfig()
	cfg.JWT.AccessTTL = c.AccessTokenTTL
	cfg.JWT.SigningMethod = "hs256"
	cfg.JWT.PrivateKey = []byte(c.Secret)
	cfg.Session.RefreshTTLDays = c.RefreshTokenDays
	cfg.VerificationCode.TTL = time.Duration(c.VerificationCodeTTLSeconds) * time.Second
	cfg.PasswordReset.TTL = time.Duration(c.ResetTokenTTLSeconds) * time.Second
	cfg.PasswordReset.LinkBaseURL = c.ResetPasswordRedirect
	cfg.Store.OpTimeout = c.StoreOpTimeout
	return cfg
}
