package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
	httpHandler "github.com/Petrenko-Anton/HW-13-REST/internal/handler/http"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/database/postgres"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/memory"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/notification"
	infraRedis "github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/redis"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/security"
	"github.com/Petrenko-Anton/HW-13-REST/internal/migrations"
	"github.com/Petrenko-Anton/HW-13-REST/internal/service"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/rate"
)

// App owns the service's components and the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
}

// New wires the auth core: stores, hasher, token manager, services, limiter
// and router.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Database.AutoMigrate {
		if err := migrations.Run(cfg.Database, logger); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	pool, err := postgres.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	users := postgres.NewUserRepository(pool)

	var previous []security.SigningKey
	if cfg.JWT.PreviousSigningKey != "" {
		previous = append(previous, security.SigningKey{
			ID:     cfg.JWT.PreviousSigningKeyID,
			Secret: []byte(cfg.JWT.PreviousSigningKey),
		})
	}
	keyring, err := security.NewKeyring(security.SigningKey{
		ID:     cfg.JWT.SigningKeyID,
		Secret: []byte(cfg.JWT.SigningKey),
	}, previous...)
	if err != nil {
		return nil, err
	}
	tokenManager := security.NewTokenManager(keyring, cfg.JWT.Issuer, cfg.JWT.ClockSkewLeeway)

	passwords, err := security.NewArgon2idPasswordService(security.Argon2idParams{
		Memory:      cfg.Security.PasswordHash.Memory,
		Iterations:  cfg.Security.PasswordHash.Iterations,
		Parallelism: cfg.Security.PasswordHash.Parallelism,
		SaltLength:  cfg.Security.PasswordHash.SaltLength,
		KeyLength:   cfg.Security.PasswordHash.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// Redis backs the rate limiter and the used-token markers when selected;
	// otherwise both live in process memory and reset on restart.
	var (
		limiter    rate.Limiter
		usedTokens repository.UsedTokenStore
	)
	if cfg.Security.RateLimiting.Store == "redis" {
		client, err := infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		limiter = rate.NewRedisLimiter(client, logger)
		usedTokens = infraRedis.NewUsedTokenStore(client)
	} else {
		limiter = rate.NewMemoryLimiter()
		usedTokens = memory.NewUsedTokenStore()
	}

	tokenService := service.NewTokenService(tokenManager, users, cfg.JWT, logger)
	verification := service.NewVerificationService(tokenManager, users, usedTokens, cfg.JWT, logger)

	authService, err := service.NewAuthService(
		users,
		passwords,
		tokenService,
		verification,
		notification.NewLogSender(logger),
		limiter,
		cfg.Security.RateLimiting,
		logger,
	)
	if err != nil {
		return nil, err
	}

	router := httpHandler.SetupRouter(authService, limiter, cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{cfg: cfg, logger: logger, server: server}, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then drains connections within the
// configured shutdown timeout.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.server.Shutdown(ctx)
}
