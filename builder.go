package boardauth

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/boardauth/internal"
	"github.com/MrEthical07/boardauth/internal/flows"
	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/rate"
	"github.com/MrEthical07/boardauth/internal/stores"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
	"github.com/MrEthical07/boardauth/jwt"
	"github.com/MrEthical07/boardauth/password"
	"github.com/MrEthical07/boardauth/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MrEthical07/boardauth"

// dummyPassword is hashed once per Engine; sign-ins for unknown emails verify
// against it.
const dummyPassword = "boardauth-unknown-member"

// Builder assembles an Engine. A Builder can be used once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory MemberDirectory
	mailer    Mailer
	hasher    PasswordHasher

	logger         *zerolog.Logger
	tracerProvider trace.TracerProvider
	random         io.Reader
	clock          func() time.Time

	// Overrides for deterministic tests.
	codeGen    func() (string, error)
	resetGen   func() (string, error)
	refreshGen func() (string, error)

	built bool
}

// New starts a Builder with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the credential store client. Single-node, sentinel and
// cluster clients are all accepted.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithDirectory(d MemberDirectory) *Builder {
	b.directory = d
	return b
}

func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithHasher replaces the default Argon2id hasher built from Config.Password.
func (b *Builder) WithHasher(h PasswordHasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// WithTracerProvider selects the provider for Engine spans. The global
// provider is used otherwise.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithRandom sets the source for codes and tokens. Defaults to crypto/rand.
func (b *Builder) WithRandom(r io.Reader) *Builder {
	b.random = r
	return b
}

func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.directory == nil {
		return nil, errors.New("member directory required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	log := zerolog.Nop()
	if b.logger != nil {
		log = *b.logger
	}
	log = log.With().Str("component", "boardauth").Logger()

	now := b.clock
	if now == nil {
		now = time.Now
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := password.New(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, fmt.Errorf("password hasher: %w", err)
		}
		hasher = h
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	// -------- ACCESS TOKENS --------
	signer, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		KeyID:         cfg.JWT.KeyID,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	random := b.random
	codeGen := b.codeGen
	if codeGen == nil {
		digits := cfg.VerificationCode.Digits
		codeGen = func() (string, error) { return internal.NewOTP(random, digits) }
	}
	resetGen := b.resetGen
	if resetGen == nil {
		resetGen = func() (string, error) { return internal.NewOpaqueToken(random) }
	}
	refreshGen := b.refreshGen
	if refreshGen == nil {
		refreshGen = func() (string, error) { return internal.NewOpaqueToken(random) }
	}

	// -------- SESSIONS --------
	sessions, err := session.NewManager(b.redis, signer, session.Config{
		KeyPrefix:  cfg.Store.KeyPrefix,
		RefreshTTL: cfg.RefreshTTL(),
		OpTimeout:  cfg.Store.OpTimeout,
		NewToken:   refreshGen,
		Now:        now,
		Logger:     &log,
	})
	if err != nil {
		return nil, err
	}

	// -------- EPHEMERAL CREDENTIALS --------
	store := ttlstore.NewRedis(b.redis, cfg.Store.OpTimeout)
	scheme := keys.New(cfg.Store.KeyPrefix)

	codes := stores.NewVerificationCodes(store, scheme, stores.VerificationConfig{
		TTL:      cfg.VerificationCode.TTL,
		Generate: codeGen,
		Now:      now,
	})
	resets := stores.NewResetTokens(store, scheme, stores.ResetConfig{
		TTL:      cfg.PasswordReset.TTL,
		Generate: resetGen,
		Now:      now,
	})

	signUpWindow := cfg.RateLimit.SignUpWindow
	if signUpWindow == 0 {
		signUpWindow = cfg.VerificationCode.TTL
	}
	limiter := rate.New(store, scheme, rate.Config{
		MaxVerificationRequests: cfg.RateLimit.MaxVerificationRequests,
		VerificationWindow:      cfg.RateLimit.VerificationWindow,
		MaxSignUpAttempts:       cfg.RateLimit.MaxSignUpAttempts,
		SignUpWindow:            signUpWindow,
		MaxSignInFailures:       cfg.RateLimit.MaxSignInFailures,
		SignInCooldown:          cfg.RateLimit.SignInCooldown,
	})

	tp := b.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	e := &Engine{
		config:    cfg,
		directory: b.directory,
		sessions:  sessions,
		jwt:       signer,
		metrics:   NewMetrics(cfg.Metrics),
		log:       log,
		tracer:    tp.Tracer(tracerName),
	}

	members := directoryAdapter{dir: b.directory}
	warn := func(msg string, err error) {
		e.log.Warn().Err(err).Msg(msg)
	}

	e.flows = flows.New(flows.Deps{
		SignUp: flows.SignUpDeps{
			Directory:        members,
			Limiter:          limiter,
			Codes:            codes,
			ValidatePassword: e.validatePassword,
			HashPassword:     hasher.Hash,
		},
		SignIn: flows.SignInDeps{
			Directory:      members,
			Limiter:        limiter,
			Sessions:       sessions,
			VerifyPassword: hasher.Verify,
			NeedsUpgrade:   hasher.NeedsUpgrade,
			HashPassword:   hasher.Hash,
			DummyHash:      dummyHash,
			Warn:           warn,
		},
		Refresh: flows.RefreshDeps{
			Sessions: sessions,
		},
		SignOut: flows.SignOutDeps{
			Sessions: sessions,
		},
		Verification: flows.VerificationDeps{
			Limiter: limiter,
			Codes:   codes,
			Mailer:  b.mailer,
		},
		PasswordReset: flows.PasswordResetDeps{
			Directory:        members,
			Tokens:           resets,
			Sessions:         sessions,
			Mailer:           b.mailer,
			Limiter:          limiter,
			ValidatePassword: e.validatePassword,
			HashPassword:     hasher.Hash,
			LinkBaseURL:      cfg.PasswordReset.LinkBaseURL,
			Warn:             warn,
		},
	})

	b.built = true
	return e, nil
}
