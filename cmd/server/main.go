package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"investment_game/internal/app/di"
	"investment_game/internal/app/router"
	"investment_game/internal/app/web"
	authhandler "investment_game/internal/feature/auth/transport/handler"
	authusecase "investment_game/internal/feature/auth/usecase"
	portfoliohandler "investment_game/internal/feature/portfolio/transport/handler"
	portfoliousecase "investment_game/internal/feature/portfolio/usecase"
	"investment_game/internal/platform/db"
	"investment_game/internal/platform/http/handler"
	jwtmw "investment_game/internal/platform/jwt"
	infraredis "investment_game/internal/platform/redis"
	"investment_game/internal/platform/session"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// db
	store, err := di.OpenStore(ctx, db.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if cfg := infraredis.LoadConfig(); cfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	sessions, err := di.NewSessionRepository(rdb, store.DB)
	if err != nil {
		return err
	}

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		slog.Warn("JWT_SECRET is not set. The JSON API will reject every token.")
	}
	tokens := jwtmw.NewGenerator(secret, jwtmw.LoadExpiration())

	sessionCfg := session.LoadConfig()
	jar := session.NewCookieJar(sessionCfg)

	// Usecase
	authUC := authusecase.NewAuthUsecase(store.Users, sessions, tokens, sessionCfg.TTL)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(store.Users, di.NewQuoteProvider(rdb), 0)

	// Handler
	handlers := router.Handlers{
		Auth:      authhandler.NewAuthHandler(authUC, jar),
		Portfolio: portfoliohandler.NewPortfolioHandler(portfolioUC),
		API:       portfoliohandler.NewAPIHandler(portfolioUC),
		Health:    handler.NewHealthHandler(healthChecks(store, rdb)...),
	}

	tmpl, err := web.Templates()
	if err != nil {
		return err
	}
	r := router.NewRouter(handlers, session.RequireSession(authUC, jar), tmpl, parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")))

	go purgeSessions(ctx, authUC, purgeInterval)

	srv := &http.Server{
		Addr:              ":" + port(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeSessions removes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, p sessionPurger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}

// healthChecks pings the store and, when configured, Redis.
func healthChecks(store *di.Store, rdb *redisv9.Client) []handler.Check {
	checks := []handler.Check{{Name: "store", Ping: store.Ping}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return checks
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// parseOrigins splits a comma separated origin list, dropping blanks.
func parseOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
