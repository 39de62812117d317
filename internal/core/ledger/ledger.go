// Package ledger owns every balance mutation. A mutation is always applied
// atomically with its paired transaction record (and audit entry for manual
// adjustments), so the balance is provably the sum of applied credits minus
// debits and silent changes are impossible.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// Store is the persistence the ledger needs. Implementations must apply each
// balance change and its paired record as a single atomic unit, and must
// reject debits past the balance with domain.ErrInsufficientFunds without
// touching the account.
type Store interface {
	AccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error)
	ApplyCredit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error
	ApplyDebit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error
	ApplyAdjustment(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, txn *domain.Transaction, entry *domain.AuditEntry) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Credit increases the account balance and records a completed transaction
// of the given type.
func (s *Service) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txnType domain.TransactionType, reason string) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("credit amount must be positive")
	}
	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txn := s.completedTransaction(acc.CustomerID, txnType, amount, reason)
	if err := s.store.ApplyCredit(ctx, accountID, amount, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit decreases the account balance. Fails with ErrInsufficientFunds when
// the amount exceeds the current balance; the account is left untouched.
func (s *Service) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txnType domain.TransactionType, reason string) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("debit amount must be positive")
	}
	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txn := s.completedTransaction(acc.CustomerID, txnType, amount, reason)
	if err := s.store.ApplyDebit(ctx, accountID, amount, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// AdjustDirection is the sign of a manual balance correction.
type AdjustDirection string

const (
	AdjustCredit AdjustDirection = "credit"
	AdjustDebit  AdjustDirection = "debit"
)

// Adjust is a manual balance correction by an admin. It is always audited,
// with the reason recorded on both the transaction and the audit entry.
func (s *Service) Adjust(ctx context.Context, admin *domain.Admin, accountID uuid.UUID, amount decimal.Decimal, direction AdjustDirection, reason string) (*domain.Transaction, error) {
	if !admin.Role.Can(domain.ActionAdjustBalance) {
		return nil, domain.ErrForbidden
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("adjustment amount must be positive")
	}
	if reason == "" {
		return nil, domain.Validationf("adjustment reason is required")
	}
	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	delta := amount
	txnType := domain.TypeDeposit
	if direction == AdjustDebit {
		delta = amount.Neg()
		txnType = domain.TypeWithdrawal
	} else if direction != AdjustCredit {
		return nil, domain.Validationf("direction must be credit or debit")
	}

	txn := s.completedTransaction(acc.CustomerID, txnType, amount, "Admin adjustment: "+reason)
	txn.ProcessedBy = &admin.ID
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    admin.ID,
		AdminName:  admin.Name,
		Action:     "adjust_balance",
		TargetType: "account",
		TargetID:   accountID.String(),
		Detail: map[string]any{
			"amount":    amount.String(),
			"direction": string(direction),
			"reason":    reason,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.ApplyAdjustment(ctx, accountID, delta, txn, entry); err != nil {
		return nil, err
	}
	slog.Info("Balance adjusted", "account_id", accountID, "direction", direction, "amount", amount, "admin_id", admin.ID)
	return txn, nil
}

func (s *Service) completedTransaction(customerID uuid.UUID, txnType domain.TransactionType, amount decimal.Decimal, reason string) *domain.Transaction {
	now := time.Now().UTC()
	return &domain.Transaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Type:        txnType,
		Amount:      domain.RoundKES(amount),
		Status:      domain.StatusCompleted,
		Description: reason,
		CreatedAt:   now,
		CompletedAt: &now,
	}
}
