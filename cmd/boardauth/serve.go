package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/MrEthical07/boardauth/directory"
	"github.com/MrEthical07/boardauth/internal/config"
	"github.com/MrEthical07/boardauth/internal/httpapi"
	"github.com/MrEthical07/boardauth/internal/telemetry"
	"github.com/MrEthical07/boardauth/mail"
	otelexport "github.com/MrEthical07/boardauth/metrics/export/otel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

const devResetRedirect = "http://localhost:3000/reset-password"

func newServeCommand() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, dev)
		},
	}
	cmd.Flags().BoolVar(&dev, "dev", false, "Use in-process Redis, an in-memory directory and logged mail")
	return cmd
}

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func serve(ctx context.Context, dev bool) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if dev {
		if err := devDefaults(&cfg); err != nil {
			return err
		}
	} else if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, dev)
	if err != nil {
		return err
	}
	zerolog.DefaultContextLogger = &logger

	var cleanup closers
	defer cleanup.run()

	shutdownTelemetry, err := telemetry.Init(ctx, "boardauth", version, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	cleanup.add(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	})

	client, err := openRedis(cfg, dev, &cleanup)
	if err != nil {
		return err
	}

	dir, err := openDirectory(ctx, cfg, dev, &cleanup)
	if err != nil {
		return err
	}

	mailer, err := openMailer(ctx, cfg, dev, logger, &cleanup)
	if err != nil {
		return err
	}

	engine, err := boardauth.New().
		WithConfig(cfg.Engine()).
		WithRedis(client).
		WithDirectory(dir).
		WithMailer(mailer).
		WithLogger(logger).
		WithTracerProvider(otel.GetTracerProvider()).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	exp, err := otelexport.NewExporter(otel.GetMeterProvider().Meter("github.com/MrEthical07/boardauth"), engine)
	if err != nil {
		return fmt.Errorf("metrics exporter: %w", err)
	}
	cleanup.add(func() { _ = exp.Close() })

	sameSite, err := cfg.SameSite()
	if err != nil {
		return err
	}
	engineCfg := engine.Config()
	router, err := httpapi.NewRouter(engine, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Cookies: httpapi.CookieConfig{
			Secure:     cfg.CookieSecure,
			SameSite:   sameSite,
			AccessTTL:  engineCfg.JWT.AccessTTL,
			RefreshTTL: engineCfg.RefreshTTL(),
		},
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}
	logger.Info().Str("addr", ln.Addr().String()).Bool("dev", dev).Msg("listening")
	return runServer(ctx, server, ln, 10*time.Second, logger)
}

// runServer serves on ln until ctx is done and returns only after Shutdown
// has drained in-flight requests, so deferred cleanup never races them.
func runServer(ctx context.Context, server *http.Server, ln net.Listener, grace time.Duration, logger zerolog.Logger) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

func devDefaults(cfg *config.Config) error {
	if cfg.Secret == "" {
		b := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, b); err != nil {
			return err
		}
		cfg.Secret = hex.EncodeToString(b)
	}
	if cfg.ResetPasswordRedirect == "" {
		cfg.ResetPasswordRedirect = devResetRedirect
	}
	cfg.CookieSecure = false
	cfg.MailTransport = config.MailLog
	return nil
}

func openRedis(cfg config.Config, dev bool, cleanup *closers) (redis.UniversalClient, error) {
	addr := cfg.RedisAddr
	if dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start miniredis: %w", err)
		}
		cleanup.add(mr.Close)
		addr = mr.Addr()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cleanup.add(func() { _ = client.Close() })
	return client, nil
}

func openDirectory(ctx context.Context, cfg config.Config, dev bool, cleanup *closers) (boardauth.MemberDirectory, error) {
	if dev && cfg.DatabaseURL == "" {
		return directory.NewMemory(), nil
	}
	pool, err := directory.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	cleanup.add(pool.Close)
	return directory.NewPostgres(pool), nil
}

func openMailer(ctx context.Context, cfg config.Config, dev bool, logger zerolog.Logger, cleanup *closers) (boardauth.Mailer, error) {
	smtpCfg := mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	}

	switch cfg.MailTransport {
	case config.MailSMTP:
		return mail.NewSMTP(smtpCfg), nil
	case config.MailNATS:
		nc, js, err := mail.Connect(cfg.NATSURL, cfg.NATSStream, mail.DefaultSubject)
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		cleanup.add(nc.Close)

		relay := mail.NewRelay(js, mail.DefaultSubject, "", mail.NewSMTP(smtpCfg), logger)
		sub, err := relay.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("start mail relay: %w", err)
		}
		cleanup.add(func() { _ = sub.Close() })
		return mail.NewOutbox(js, mail.DefaultSubject), nil
	default:
		return mail.NewLog(logger, dev), nil
	}
}
