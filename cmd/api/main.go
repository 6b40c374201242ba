// Package main is the entrypoint for the AlphaBank API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/cache"
	"github.com/alphabank/alphabank-api/internal/config"
	"github.com/alphabank/alphabank-api/internal/handler"
	"github.com/alphabank/alphabank-api/internal/metrics"
	"github.com/alphabank/alphabank-api/internal/middleware"
	"github.com/alphabank/alphabank-api/internal/ratelimit"
	"github.com/alphabank/alphabank-api/internal/recurring"
	"github.com/alphabank/alphabank-api/internal/repository"
	"github.com/alphabank/alphabank-api/internal/server"
	"github.com/alphabank/alphabank-api/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	var otelShutdown func()
	if cfg.OTelEnabled {
		otelShutdown, err = otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(cfg.OTelServiceName),
			otelconfig.WithServiceVersion(version),
			otelconfig.WithSpanProcessor(honeycomb.NewBaggageSpanProcessor()),
		)
		if err != nil {
			logger.Error("failed to configure tracing", "error", err)
			os.Exit(1)
		}
		logger.Info("tracing enabled", "service", cfg.OTelServiceName)
	}

	repoOpts := repository.DefaultOptions()
	repoOpts.Tracing = cfg.OTelEnabled
	repo, err := repository.New(ctx, cfg.DatabaseURL, repoOpts)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.DefaultOptions())
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, rate limiting and login lockout are per-process")
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL())
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	limits := newLimiters(ctx, cfg, cacheClient)

	generator := recurring.NewGenerator(repo, logger, recorder)
	authService := service.NewAuthService(repo, tokens, limits.lockout, recorder, logger)
	transactionService := service.NewTransactionService(repo, repo, recorder)
	categoryService := service.NewCategoryService(repo)
	goalService := service.NewGoalService(repo)
	recurringService := service.NewRecurringService(repo, repo, generator)
	notificationService := service.NewNotificationService(repo)

	var cacheChecker handler.HealthChecker
	if cacheClient != nil {
		cacheChecker = cacheClient
	}

	handlers := routeHandlers{
		root:          handler.New(version),
		health:        handler.NewHealthHandler(repo, cacheChecker),
		metrics:       handler.NewMetricsHandler(recorder),
		auth:          handler.NewAuthHandler(authService, logger),
		transactions:  handler.NewTransactionHandler(transactionService, logger),
		categories:    handler.NewCategoryHandler(categoryService, logger),
		goals:         handler.NewGoalHandler(goalService, logger),
		recurring:     handler.NewRecurringHandler(recurringService, logger),
		notifications: handler.NewNotificationHandler(notificationService, logger),
	}

	var root http.Handler = setupRouter(handlers, tokens, limits, recorder, cfg, logger)
	if cfg.OTelEnabled {
		root = otelhttp.NewHandler(root, "alphabank-api")
	}

	srv := server.New(root, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, stopped last.
	if otelShutdown != nil {
		srv.OnShutdown("tracing", func(context.Context) error {
			otelShutdown()
			return nil
		})
	}
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	srv.OnShutdown("background", func(context.Context) error {
		cancel()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// limiters bundles the rate limiters and login lockout, backed by Redis
// when configured and by process memory otherwise.
type limiters struct {
	user    ratelimit.Limiter
	ip      ratelimit.Limiter
	lockout ratelimit.Lockout
}

func newLimiters(ctx context.Context, cfg *config.Config, c *cache.Cache) limiters {
	if c != nil {
		return limiters{
			user:    ratelimit.NewRedisUserLimiter(c, cfg.RateLimitUserRPM, cfg.RateLimitUserBurst),
			ip:      ratelimit.NewRedisIPLimiter(c, cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst),
			lockout: ratelimit.NewRedisLockout(c, cfg.LoginMaxAttempts, cfg.LoginLockout),
		}
	}

	user := ratelimit.NewPerMinuteStore(cfg.RateLimitUserRPM, cfg.RateLimitUserBurst)
	ip := ratelimit.NewStore(float64(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	user.StartJanitor(ctx)
	ip.StartJanitor(ctx)

	return limiters{
		user:    user,
		ip:      ip,
		lockout: ratelimit.NewMemoryLockout(cfg.LoginMaxAttempts, cfg.LoginLockout),
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routeHandlers struct {
	root          *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	auth          *handler.AuthHandler
	transactions  *handler.TransactionHandler
	categories    *handler.CategoryHandler
	goals         *handler.GoalHandler
	recurring     *handler.RecurringHandler
	notifications *handler.NotificationHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routeHandlers,
	verifier middleware.TokenVerifier,
	limits limiters,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", h.root.Hello)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/health", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	ipLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  limits.ip,
		Recorder: recorder,
		Enabled:  cfg.RateLimitEnabled,
		Limit:    cfg.RateLimitAuthBurst,
	})
	userLimit := middleware.RateLimitUser(middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  limits.user,
		Recorder: recorder,
		Enabled:  cfg.RateLimitEnabled,
		Limit:    cfg.RateLimitUserRPM,
	})
	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Verifier: verifier,
		Now:      time.Now,
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ipLimit)
			r.Post("/auth/register", h.auth.Register)
			r.Post("/auth/login", h.auth.Login)
			r.Post("/auth/forgot-password", h.auth.ForgotPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(userLimit)

			r.Post("/auth/change-password", h.auth.ChangePassword)
			r.Get("/me", h.auth.Me)
			r.Put("/me", h.auth.UpdateProfile)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.transactions.List)
				r.Post("/", h.transactions.Create)
				r.Get("/summary", h.transactions.Summary)
				r.Get("/{id}", h.transactions.Get)
				r.Put("/{id}", h.transactions.Update)
				r.Delete("/{id}", h.transactions.Delete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.categories.List)
				r.Post("/", h.categories.Create)
				r.Put("/{id}", h.categories.Update)
				r.Delete("/{id}", h.categories.Delete)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", h.goals.List)
				r.Post("/", h.goals.Create)
				r.Get("/{id}", h.goals.Get)
				r.Put("/{id}", h.goals.Update)
				r.Delete("/{id}", h.goals.Delete)
				r.Post("/{id}/progress", h.goals.AddProgress)
			})

			r.Route("/recurring", func(r chi.Router) {
				r.Get("/", h.recurring.List)
				r.Post("/", h.recurring.Create)
				r.Post("/generate", h.recurring.Generate)
				r.Get("/{id}", h.recurring.Get)
				r.Put("/{id}", h.recurring.Update)
				r.Delete("/{id}", h.recurring.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.notifications.List)
				r.Post("/", h.notifications.Create)
				r.Put("/{id}/read", h.notifications.MarkRead)
				r.Delete("/{id}", h.notifications.Delete)
			})
		})
	})

	r.NotFound(h.root.NotFound)
	r.MethodNotAllowed(h.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
