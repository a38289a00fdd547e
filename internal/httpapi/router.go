package httpapi

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/MrEthical07/boardauth/metrics/export/prometheus"
	"github.com/MrEthical07/boardauth/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Options configures the router.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	Cookies        CookieConfig

	// SensitiveRatePerMinute caps per-IP requests on the unauthenticated
	// credential routes. Zero means 20.
	SensitiveRatePerMinute int

	// Metrics serves /metrics. Nil builds a Prometheus handler from the
	// service's counters.
	Metrics http.Handler

	Now func() time.Time
}

type handler struct {
	svc     Service
	cookies CookieConfig
	now     func() time.Time
}

// NewRouter returns the HTTP handler for svc.
func NewRouter(svc Service, opts Options) (http.Handler, error) {
	if svc == nil {
		return nil, errors.New("httpapi: nil service")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SensitiveRatePerMinute <= 0 {
		opts.SensitiveRatePerMinute = 20
	}
	metrics := opts.Metrics
	if metrics == nil {
		var err error
		if metrics, err = prometheus.Handler(svc); err != nil {
			return nil, err
		}
	}

	h := &handler{svc: svc, cookies: opts.Cookies, now: opts.Now}
	guard := middleware.Guard(svc, middleware.WithErrorHandler(guardError))
	sensitive := httprate.LimitByIP(opts.SensitiveRatePerMinute, time.Minute)

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(clientContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeOK(w, http.StatusOK, CodeOK, "ok", nil)
	})
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sensitive)
			r.Post("/sign-in", h.signIn)
			r.Post("/sign-up", h.signUp)
			r.Post("/verification-code", h.verificationCode)
			r.Post("/password-reset-link", h.passwordResetLink)
			r.Post("/password-reset", h.passwordReset)
		})
		r.Post("/sign-out", h.signOut)
		r.Post("/refresh-token", h.refreshToken)
		r.Get("/email-availability", h.emailAvailability)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/sign-out-all", h.signOutAll)
			r.Get("/me", h.me)
		})
	})

	return r, nil
}

// clientContext records the caller's address and user agent for the engine.
func clientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := boardauth.WithClientIP(r.Context(), ip)
		ctx = boardauth.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func guardError(w http.ResponseWriter, _ *http.Request, status int, err error) {
	switch {
	case status == http.StatusForbidden:
		writeFail(w, status, CodeForbidden, "insufficient role")
	case errors.Is(err, boardauth.ErrTokenInvalid):
		writeFail(w, status, CodeInvalidJWT, "invalid access token")
	default:
		writeFail(w, status, CodeUnauthorized, "unauthorized")
	}
}
