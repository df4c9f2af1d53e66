package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/nebuladesk/helpdesk/internal/api/http"
	"github.com/nebuladesk/helpdesk/internal/api/http/handlers"
	"github.com/nebuladesk/helpdesk/internal/auth"
	"github.com/nebuladesk/helpdesk/internal/config"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/observability"
	"github.com/nebuladesk/helpdesk/internal/persistence"
	"github.com/nebuladesk/helpdesk/internal/repository"
	"github.com/nebuladesk/helpdesk/internal/service"
	"github.com/nebuladesk/helpdesk/internal/sla"
	"github.com/nebuladesk/helpdesk/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	policyRepo := repository.NewSLAPolicyRepository(pool)

	calculator := sla.NewCalculator(policyRepo)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		AuditRepo:      auditRepo,
		Calculator:     calculator,
		Dispatcher:     dispatcher,
	})
	orgService := service.NewOrganizationService(orgRepo)
	userService := service.NewUserService(userRepo)
	slaService := service.NewSLAService(ticketRepo, policyRepo, redis, cfg.SLA.DashboardCacheTTL(), logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	sweeper := worker.NewBreachSweeper(worker.SweeperOptions{
		Store:      ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Locker:     redis,
		BatchSize:  cfg.SLA.SweepBatchSize,
		LockTTL:    cfg.SLA.SweepLockTTL(),
	})
	if cfg.SLA.SweepEnabled {
		go sweeper.Run(ctx, cfg.SLA.SweepInterval())
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Organizations:  handlers.NewOrganizationsHandler(orgService),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		SLA:            handlers.NewSLAHandler(slaService, sweeper),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
