package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civiceye/internal/api/http"
	"github.com/spec-kit/civiceye/internal/api/http/handlers"
	"github.com/spec-kit/civiceye/internal/auth"
	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/events"
	"github.com/spec-kit/civiceye/internal/observability"
	"github.com/spec-kit/civiceye/internal/persistence"
	"github.com/spec-kit/civiceye/internal/repository"
	"github.com/spec-kit/civiceye/internal/service"
	"github.com/spec-kit/civiceye/internal/storage"
	"github.com/spec-kit/civiceye/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	authorityRepo := repository.NewAuthorityRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	trailRepo := repository.NewUpdateTrailRepository(pool)

	if cfg.Bootstrap.SeedAuthority {
		if err := seedDefaultAuthority(ctx, authorityRepo, cfg.Bootstrap, cfg.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("failed to seed default authority", zap.Error(err))
		}
	}

	sessions := auth.NewSessionStore(redis.Client, cfg.Auth.SessionTTL())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(sessions, tokens, cfg.Auth.SessionCookieName, userRepo, authorityRepo)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	evidenceStore, err := storage.NewEvidenceStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("failed to init evidence store", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:      userRepo,
		AuthorityRepo: authorityRepo,
		Sessions:      sessions,
		Tokens:        tokens,
	})
	complaintService := service.NewComplaintService(cfg.Policy, service.ComplaintDependencies{
		ComplaintRepo:  complaintRepo,
		TrailRepo:      trailRepo,
		DepartmentRepo: departmentRepo,
		Dispatcher:     dispatcher,
	})
	projectionService := service.NewProjectionService(complaintRepo)
	departmentService := service.NewDepartmentService(departmentRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.MaxBodyBytes,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth),
		Complaints:     handlers.NewComplaintsHandler(complaintService, projectionService, evidenceStore),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		Stats:          handlers.NewStatsHandler(projectionService),
		AuthMiddleware: authMiddleware,

		ProtectDepartmentRegistry: cfg.Policy.ProtectDepartmentRegistry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// seedDefaultAuthority provisions the bootstrap authority account on first
// start so status updates are possible before any authority exists.
func seedDefaultAuthority(ctx context.Context, authorities repository.AuthorityRepository, cfg config.BootstrapConfig, bcryptCost int, logger *zap.Logger) error {
	existing, err := authorities.GetByUsername(ctx, cfg.AuthorityUsername)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AuthorityPassword, bcryptCost)
	if err != nil {
		return err
	}
	authority := &domain.Authority{
		Username:     cfg.AuthorityUsername,
		Email:        cfg.AuthorityEmail,
		PasswordHash: hash,
	}
	if err := authorities.Create(ctx, authority); err != nil {
		return err
	}
	logger.Info("seeded default authority", zap.String("username", authority.Username))
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
