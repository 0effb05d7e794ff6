// Package api wires the wallet auth service into a runnable HTTP server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lancehub/wallet-sso/pkg/account"
	"github.com/lancehub/wallet-sso/pkg/app"
	apphttp "github.com/lancehub/wallet-sso/pkg/app/http"
	"github.com/lancehub/wallet-sso/pkg/config"
	"github.com/lancehub/wallet-sso/pkg/nonce"
	"github.com/lancehub/wallet-sso/pkg/pgutil"
	"github.com/lancehub/wallet-sso/pkg/session"
	"github.com/lancehub/wallet-sso/pkg/sessionstore"
	"github.com/lancehub/wallet-sso/pkg/userstore"
	"github.com/lancehub/wallet-sso/pkg/walletauth"
)

// Server is the auth server runner.
type Server struct {
	cfg *config.Config
}

var _ app.Runner = (*Server)(nil)

// NewServer creates a new auth server from configuration
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the auth server and blocks until shutdown.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(s.cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wallet auth server",
		zap.String("host", s.cfg.Server.Host),
		zap.Int("port", s.cfg.Server.Port),
	)

	secret := os.Getenv(s.cfg.Auth.JWTSecretEnv)
	if secret == "" {
		return fmt.Errorf("JWT secret environment variable %s is not set", s.cfg.Auth.JWTSecretEnv)
	}

	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connection established",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)

	var nonces nonce.Store
	if s.cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		nonces = nonce.NewRedisStore(client, s.cfg.Auth.NonceTTL)
		logger.Info("Challenge store backed by redis", zap.String("addr", s.cfg.Redis.Addr))
	} else {
		nonces = nonce.NewMemoryStore(s.cfg.Auth.NonceTTL)
		logger.Warn("Challenge store is in-process memory; only correct for a single instance")
	}

	accounts := userstore.NewStore(db)
	sessions := sessionstore.NewStore(db)
	resolver := account.NewResolver(accounts, logger)
	issuer := session.NewIssuer([]byte(secret), s.cfg.Auth.SessionTTL, sessions, logger)

	svc := walletauth.NewService(
		nonces,
		resolver,
		issuer,
		accounts,
		sessions,
		s.cfg.Auth.AppName,
		s.cfg.Auth.Domain,
		s.cfg.Auth.NonceTTL,
		logger,
	)
	svc = walletauth.NewLog(svc, logger)

	handler := walletauth.NewHandler(svc, s.cfg.Auth.CookieName, s.cfg.Auth.CookieSecure, s.cfg.Auth.SessionTTL)

	// Opportunistic cleanup of stale session records on startup.
	if removed, err := sessions.DeleteExpired(ctx, time.Now()); err != nil {
		logger.Warn("failed to sweep expired sessions", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Swept expired sessions", zap.Int64("removed", removed))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled")
	}

	handler.RegisterRoutes(r)

	return apphttp.ServeAndWait(ctx, r, logger, &s.cfg.Server)
}
