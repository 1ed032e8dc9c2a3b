package scheduler

import (
	"context"
	"time"

	"github.com/coachdesk/coachdesk/internal/api/dto"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/service"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic billing jobs. Both jobs are idempotent, so
// a missed or doubled run is harmless: dues generation skips payers that
// already have an invoice for the period, and usage reconciliation
// overwrites the counters from the authoritative tables.
type Scheduler struct {
	cron *cron.Cron
	cfg  *config.Configuration
	log  *logger.Logger

	invoiceService      service.InvoiceService
	subscriptionService service.SubscriptionService
	tenantRepo          tenant.Repository
}

func New(
	cfg *config.Configuration,
	log *logger.Logger,
	invoiceService service.InvoiceService,
	subscriptionService service.SubscriptionService,
	tenantRepo tenant.Repository,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:                cron.New(cron.WithLocation(time.UTC)),
		cfg:                 cfg,
		log:                 log,
		invoiceService:      invoiceService,
		subscriptionService: subscriptionService,
		tenantRepo:          tenantRepo,
	}

	if expr := cfg.Scheduler.MonthlyDuesCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, s.runMonthlyDues); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("invalid monthly dues cron expression %q", expr).
				Mark(ierr.ErrValidation)
		}
	}
	if expr := cfg.Scheduler.ReconcileUsageCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, s.runReconcileUsage); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("invalid usage reconciliation cron expression %q", expr).
				Mark(ierr.ErrValidation)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Infow("starting scheduler",
		"monthly_dues_cron", s.cfg.Scheduler.MonthlyDuesCron,
		"reconcile_usage_cron", s.cfg.Scheduler.ReconcileUsageCron)
	s.cron.Start()
}

// Stop waits for any running job to finish before returning.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// jobContext builds the context scheduled jobs run under. Jobs act on
// behalf of the system, not a tenant; services that write rows stamp the
// owning tenant themselves.
func jobContext() context.Context {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}

func (s *Scheduler) runMonthlyDues() {
	ctx := jobContext()
	now := time.Now().UTC()

	resp, err := s.invoiceService.GenerateMonthlyDues(ctx, dto.GenerateMonthlyDuesRequest{
		PeriodMonth: int(now.Month()),
		PeriodYear:  now.Year(),
	})
	if err != nil {
		s.log.Errorw("scheduled monthly dues generation failed",
			"period_month", int(now.Month()),
			"period_year", now.Year(),
			"error", err)
		return
	}

	s.log.Infow("scheduled monthly dues generation finished",
		"period_month", int(now.Month()),
		"period_year", now.Year(),
		"created", resp.Created,
		"skipped", resp.Skipped)
}

func (s *Scheduler) runReconcileUsage() {
	ctx := jobContext()

	tenants, err := s.tenantRepo.List(ctx)
	if err != nil {
		s.log.Errorw("scheduled usage reconciliation failed to list tenants", "error", err)
		return
	}

	var reconciled, skipped int
	for _, t := range tenants {
		if _, err := s.subscriptionService.ReconcileUsage(ctx, t.ID); err != nil {
			// Tenants without a subscription have no counters to fix.
			if ierr.IsNotFound(err) {
				skipped++
				continue
			}
			s.log.Errorw("scheduled usage reconciliation failed for tenant",
				"tenant_id", t.ID,
				"error", err)
			continue
		}
		reconciled++
	}

	s.log.Infow("scheduled usage reconciliation finished",
		"reconciled", reconciled,
		"skipped", skipped)
}
