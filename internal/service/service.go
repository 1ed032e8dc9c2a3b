package service

import (
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/domain/commission"
	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	"github.com/coachdesk/coachdesk/internal/domain/payer"
	"github.com/coachdesk/coachdesk/internal/domain/sequence"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
)

// ServiceParams bundles the dependencies shared by all services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	TenantRepo       tenant.Repository
	PayerRepo        payer.Repository
	InvoiceRepo      invoice.Repository
	SequenceRepo     sequence.Repository
	CommissionRepo   commission.Repository
	SubscriptionRepo subscription.Repository
	UsageSource      subscription.UsageSource
}

// NewServiceParams assembles the shared service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	tenantRepo tenant.Repository,
	payerRepo payer.Repository,
	invoiceRepo invoice.Repository,
	sequenceRepo sequence.Repository,
	commissionRepo commission.Repository,
	subscriptionRepo subscription.Repository,
	usageSource subscription.UsageSource,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		TenantRepo:       tenantRepo,
		PayerRepo:        payerRepo,
		InvoiceRepo:      invoiceRepo,
		SequenceRepo:     sequenceRepo,
		CommissionRepo:   commissionRepo,
		SubscriptionRepo: subscriptionRepo,
		UsageSource:      usageSource,
	}
}
