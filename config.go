package boardauth

import (
	"errors"
	"strings"
	"time"
)

// Config is the full Engine configuration. Start from DefaultConfig and
// override what you need; Build validates the result.
type Config struct {
	JWT              JWTConfig
	Session          SessionConfig
	VerificationCode VerificationCodeConfig
	PasswordReset    PasswordResetConfig
	Password         PasswordConfig
	RateLimit        RateLimitConfig
	Store            StoreConfig
	Metrics          MetricsConfig
}

// JWTConfig controls access-token signing.
type JWTConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
}

// SessionConfig controls refresh-token sessions.
type SessionConfig struct {
	// RefreshTTLDays is the refresh-token lifetime in whole days.
	RefreshTTLDays int
}

type VerificationCodeConfig struct {
	TTL    time.Duration
	Digits int
}

type PasswordResetConfig struct {
	TTL time.Duration
	// LinkBaseURL receives the token as the authToken query parameter.
	LinkBaseURL string
}

// PasswordConfig holds Argon2id cost parameters and the length policy
// applied to new passwords. Lengths are in bytes.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
	MaxLength   int
}

// RateLimitConfig holds per-email budgets. A zero max disables the limit.
// A zero SignUpWindow follows the verification-code TTL.
type RateLimitConfig struct {
	MaxVerificationRequests int
	VerificationWindow      time.Duration
	MaxSignUpAttempts       int
	SignUpWindow            time.Duration
	MaxSignInFailures       int
	SignInCooldown          time.Duration
}

type StoreConfig struct {
	KeyPrefix string
	OpTimeout time.Duration
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns production defaults. Signing keys are left empty and
// must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     15 * time.Minute,
			SigningMethod: "hs256",
			Issuer:        "boardauth",
		},
		Session: SessionConfig{
			RefreshTTLDays: 14,
		},
		VerificationCode: VerificationCodeConfig{
			TTL:    210 * time.Second,
			Digits: 6,
		},
		PasswordReset: PasswordResetConfig{
			TTL: 30 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
			MaxLength:   64,
		},
		RateLimit: RateLimitConfig{
			MaxVerificationRequests: 5,
			VerificationWindow:      10 * time.Minute,
			MaxSignUpAttempts:       10,
			MaxSignInFailures:       10,
			SignInCooldown:          15 * time.Minute,
		},
		Store: StoreConfig{
			KeyPrefix: "ba",
			OpTimeout: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// RefreshTTL converts Session.RefreshTTLDays to a duration.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Session.RefreshTTLDays) * 24 * time.Hour
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	switch c.JWT.SigningMethod {
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PrivateKey and PublicKey")
		}
	case "hs256":
		if len(c.JWT.PrivateKey) < 32 {
			return errors.New("hs256 requires a PrivateKey of at least 32 bytes")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Session
	if c.Session.RefreshTTLDays < 1 {
		return errors.New("Session RefreshTTLDays must be >= 1")
	}
	if c.RefreshTTL() <= c.JWT.AccessTTL {
		return errors.New("refresh lifetime must exceed AccessTTL")
	}

	// Ephemeral credentials
	if c.VerificationCode.TTL <= 0 {
		return errors.New("VerificationCode TTL must be > 0")
	}
	if c.VerificationCode.Digits < 4 || c.VerificationCode.Digits > 10 {
		return errors.New("VerificationCode Digits must be between 4 and 10")
	}
	if c.PasswordReset.TTL <= 0 {
		return errors.New("PasswordReset TTL must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 || c.Password.MaxLength < c.Password.MinLength {
		return errors.New("Password MinLength/MaxLength are inconsistent")
	}
	if c.Password.MaxLength > 1024 {
		return errors.New("Password MaxLength must be <= 1024")
	}

	// Rate limits
	rl := c.RateLimit
	if rl.MaxVerificationRequests < 0 || rl.MaxSignUpAttempts < 0 || rl.MaxSignInFailures < 0 {
		return errors.New("RateLimit maxima must be >= 0")
	}
	if rl.MaxVerificationRequests > 0 && rl.VerificationWindow <= 0 {
		return errors.New("RateLimit VerificationWindow must be > 0")
	}
	if rl.MaxSignInFailures > 0 && rl.SignInCooldown <= 0 {
		return errors.New("RateLimit SignInCooldown must be > 0")
	}
	if rl.SignUpWindow < 0 {
		return errors.New("RateLimit SignUpWindow must be >= 0")
	}

	// Store
	if c.Store.KeyPrefix == "" || strings.Contains(c.Store.KeyPrefix, ":") {
		return errors.New("Store KeyPrefix must be non-empty and contain no ':'")
	}
	if c.Store.OpTimeout <= 0 {
		return errors.New("Store OpTimeout must be > 0")
	}

	return nil
}
