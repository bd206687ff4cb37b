package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/redlink/internal/api/http"
	"github.com/spec-kit/redlink/internal/api/http/handlers"
	"github.com/spec-kit/redlink/internal/auth"
	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/config"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/observability"
	"github.com/spec-kit/redlink/internal/repository"
	"github.com/spec-kit/redlink/internal/scheduler"
	"github.com/spec-kit/redlink/internal/service"
	"github.com/spec-kit/redlink/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	clk := clock.NewSystem()
	dispatcher := events.NewInMemoryDispatcher(logger)

	requestRepo := repository.NewRequestRepository()
	donorRepo := repository.NewDonorRepository()

	matcher := service.NewMatchingService(service.MatchingDependencies{
		RequestRepo: requestRepo,
		DonorRepo:   donorRepo,
		Clock:       clk,
		Policy:      cfg.Engine.AlertPolicy,
		Dispatcher:  dispatcher,
		Logger:      logger.Named("matching"),
		Metrics:     metrics,
	})
	donorService := service.NewDonorService(service.DonorDependencies{
		DonorRepo:  donorRepo,
		Scheduler:  scheduler.New(),
		Matcher:    matcher,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger.Named("donors"),
		Metrics:    metrics,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:     requestRepo,
		Donors:          donorService,
		Matcher:         matcher,
		Clock:           clk,
		Dispatcher:      dispatcher,
		Logger:          logger.Named("requests"),
		Metrics:         metrics,
		DefaultHospital: cfg.Hospital.Name,
	})
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, donorRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.ReadinessCheck{
		"donor_store": func(ctx context.Context) error {
			_, err := donorRepo.List(ctx)
			return err
		},
		"request_store": func(ctx context.Context) error {
			_, err := requestRepo.List(ctx)
			return err
		},
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Donors:         handlers.NewDonorsHandler(donorService, matcher, notificationService, tokens),
		Requests:       handlers.NewRequestsHandler(requestService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	poller := worker.NewDeadlinePoller(donorService, cfg.Engine.PollInterval(), logger.Named("poller"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("alert_policy", string(cfg.Engine.AlertPolicy)))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service stopped with error", zap.Error(err))
	}
}
