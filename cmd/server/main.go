package main

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/api"
	v1 "github.com/coachdesk/coachdesk/internal/api/v1"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	"github.com/coachdesk/coachdesk/internal/repository"
	"github.com/coachdesk/coachdesk/internal/scheduler"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/coachdesk/coachdesk/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// Repositories
			repository.NewTenantRepository,
			repository.NewPayerRepository,
			repository.NewInvoiceRepository,
			repository.NewSequenceRepository,
			repository.NewCommissionRepository,
			repository.NewSubscriptionRepository,
			repository.NewUsageSource,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewTenantService,
			service.NewPayerService,
			service.NewSequenceService,
			service.NewInvoiceService,
			service.NewCommissionService,
			service.NewSubscriptionService,
		),
	)

	// API and scheduler
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
			scheduler.New,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	logger *logger.Logger,
	tenantService service.TenantService,
	payerService service.PayerService,
	invoiceService service.InvoiceService,
	commissionService service.CommissionService,
	subscriptionService service.SubscriptionService,
) api.Handlers {
	return api.Handlers{
		Tenant:       v1.NewTenantHandler(tenantService, logger),
		Payer:        v1.NewPayerHandler(payerService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
		Commission:   v1.NewCommissionHandler(commissionService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	sched *scheduler.Scheduler,
	db *postgres.DB,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startScheduler(lc, sched)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeScheduler:
		startScheduler(lc, sched)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sched.Stop()
			return nil
		},
	})
}
