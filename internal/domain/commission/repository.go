package commission

import (
	"context"
	"time"
)

type Repository interface {
	// CreateAgreement inserts a new agreement. Returns ErrAlreadyExists
	// when an active agreement already exists for the (parent, child)
	// pair.
	CreateAgreement(ctx context.Context, agreement *Agreement) error
	GetAgreement(ctx context.Context, id string) (*Agreement, error)
	UpdateAgreement(ctx context.Context, agreement *Agreement) error
	// GetActiveAgreementForChild returns the single active agreement
	// where childTenantID is the child, ErrNotFound when none exists.
	GetActiveAgreementForChild(ctx context.Context, childTenantID string) (*Agreement, error)
	ListAgreements(ctx context.Context, parentTenantID string) ([]*Agreement, error)

	// CreateTransaction inserts a new transaction. Returns
	// ErrAlreadyExists when a transaction for the sale already exists;
	// the first writer wins and later callers observe the existing row.
	CreateTransaction(ctx context.Context, txn *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	GetTransactionBySaleID(ctx context.Context, saleID string) (*Transaction, error)
	UpdateTransaction(ctx context.Context, txn *Transaction) error
	// ListPendingTransactions returns the PENDING transactions for a
	// (parent, child) pair.
	ListPendingTransactions(ctx context.Context, parentTenantID, childTenantID string) ([]*Transaction, error)
	// MarkTransactionsPaid flips the given transactions to PAID in a
	// single atomic batch and returns how many rows changed. Rows that
	// are no longer PENDING are left untouched and not counted.
	MarkTransactionsPaid(ctx context.Context, ids []string, paidAt time.Time) (int64, error)
}
