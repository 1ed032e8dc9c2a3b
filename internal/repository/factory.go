package repository

import (
	"github.com/coachdesk/coachdesk/internal/domain/commission"
	"github.com/coachdesk/coachdesk/internal/domain/invoice"
	"github.com/coachdesk/coachdesk/internal/domain/payer"
	"github.com/coachdesk/coachdesk/internal/domain/sequence"
	"github.com/coachdesk/coachdesk/internal/domain/subscription"
	"github.com/coachdesk/coachdesk/internal/domain/tenant"
	"github.com/coachdesk/coachdesk/internal/logger"
	"github.com/coachdesk/coachdesk/internal/postgres"
	postgresRepo "github.com/coachdesk/coachdesk/internal/repository/postgres"
)

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(db, logger)
}

func NewPayerRepository(db *postgres.DB, logger *logger.Logger) payer.Repository {
	return postgresRepo.NewPayerRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return postgresRepo.NewSequenceRepository(db, logger)
}

func NewCommissionRepository(db *postgres.DB, logger *logger.Logger) commission.Repository {
	return postgresRepo.NewCommissionRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewUsageSource(db *postgres.DB, logger *logger.Logger) subscription.UsageSource {
	return postgresRepo.NewUsageSource(db, logger)
}
