// Package approval is the role-gated dispatcher over transaction workflow
// transitions. Every mutating call checks the acting admin's capability
// before anything else is touched, validates the status move against the
// per-type transition table, and hands the store one atomic settle.
package approval

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// Settle describes one transaction transition and its side effects. The
// store applies the status move, the balance delta, the audit entry and the
// queued notification as a single atomic unit. A conditional status update
// that matches no row must surface domain.ErrInvalidStateTransition; a debit
// past the balance must surface domain.ErrInsufficientFunds and leave both
// the account and the transaction untouched.
type Settle struct {
	TxnID         uuid.UUID
	From, To      domain.TransactionStatus
	AdminID       uuid.UUID
	Note          string
	Delta         decimal.Decimal
	MarkCompleted bool
	Audit         *domain.AuditEntry
	Job           *domain.NotificationJob
}

type Store interface {
	TransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error)
	SettleTransaction(ctx context.Context, s Settle) error
}

type Gateway struct {
	store     Store
	notifyURL string
}

func NewGateway(store Store, notifyURL string) *Gateway {
	return &Gateway{store: store, notifyURL: notifyURL}
}

// VerifyDeposit confirms a customer's deposit arrived on the paybill and
// credits the account.
func (g *Gateway) VerifyDeposit(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, note string) (*domain.Transaction, error) {
	txn, err := g.load(ctx, admin, domain.ActionVerifyDeposit, txnID, domain.TypeDeposit, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:         txnID,
		From:          txn.Status,
		To:            domain.StatusCompleted,
		AdminID:       admin.ID,
		Note:          note,
		Delta:         txn.Amount,
		MarkCompleted: true,
		Audit:         g.auditEntry(admin, "verify_deposit", txn, map[string]any{"amount": txn.Amount.String(), "note": note}),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Deposit verified", "transaction_id", txnID, "amount", txn.Amount, "admin_id", admin.ID)
	return g.store.TransactionByID(ctx, txnID)
}

// RejectDeposit declines a deposit awaiting verification. The balance is
// never touched.
func (g *Gateway) RejectDeposit(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, reason string) (*domain.Transaction, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}
	txn, err := g.load(ctx, admin, domain.ActionRejectDeposit, txnID, domain.TypeDeposit, domain.StatusRejected)
	if err != nil {
		return nil, err
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:   txnID,
		From:    txn.Status,
		To:      domain.StatusRejected,
		AdminID: admin.ID,
		Note:    reason,
		Audit:   g.auditEntry(admin, "reject_deposit", txn, map[string]any{"reason": reason}),
	})
	if err != nil {
		return nil, err
	}
	return g.store.TransactionByID(ctx, txnID)
}

// ApproveWithdrawal moves a withdrawal into processing. The current balance
// is re-validated here: the request may be older than the money. On
// insufficient funds the transaction stays pending.
func (g *Gateway) ApproveWithdrawal(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, note string) (*domain.Transaction, error) {
	txn, err := g.load(ctx, admin, domain.ActionApproveWithdrawal, txnID, domain.TypeWithdrawal, domain.StatusProcessing)
	if err != nil {
		return nil, err
	}
	acc, err := g.store.AccountByCustomer(ctx, txn.CustomerID)
	if err != nil {
		return nil, err
	}
	if acc.Balance.LessThan(txn.Amount) {
		return nil, domain.ErrInsufficientFunds
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:   txnID,
		From:    txn.Status,
		To:      domain.StatusProcessing,
		AdminID: admin.ID,
		Note:    note,
		Audit:   g.auditEntry(admin, "approve_withdrawal", txn, map[string]any{"amount": txn.Amount.String(), "note": note}),
	})
	if err != nil {
		return nil, err
	}
	return g.store.TransactionByID(ctx, txnID)
}

// CompleteWithdrawal pays out a processing withdrawal. The debit is applied
// here, conditional on the balance still covering the amount; on
// insufficient funds the transaction stays in processing. Completion
// enqueues the payout notification.
func (g *Gateway) CompleteWithdrawal(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, note string) (*domain.Transaction, error) {
	txn, err := g.load(ctx, admin, domain.ActionCompleteWithdrawal, txnID, domain.TypeWithdrawal, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:         txnID,
		From:          txn.Status,
		To:            domain.StatusCompleted,
		AdminID:       admin.ID,
		Note:          note,
		Delta:         txn.Amount.Neg(),
		MarkCompleted: true,
		Audit:         g.auditEntry(admin, "complete_withdrawal", txn, map[string]any{"amount": txn.Amount.String(), "note": note}),
		Job:           g.notification("withdrawal.completed", txn),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Withdrawal completed", "transaction_id", txnID, "amount", txn.Amount, "admin_id", admin.ID)
	return g.store.TransactionByID(ctx, txnID)
}

// RejectWithdrawal declines a pending withdrawal. A reason is mandatory.
func (g *Gateway) RejectWithdrawal(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, reason string) (*domain.Transaction, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}
	txn, err := g.load(ctx, admin, domain.ActionRejectWithdrawal, txnID, domain.TypeWithdrawal, domain.StatusRejected)
	if err != nil {
		return nil, err
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:   txnID,
		From:    txn.Status,
		To:      domain.StatusRejected,
		AdminID: admin.ID,
		Note:    reason,
		Audit:   g.auditEntry(admin, "reject_withdrawal", txn, map[string]any{"reason": reason}),
	})
	if err != nil {
		return nil, err
	}
	return g.store.TransactionByID(ctx, txnID)
}

// ReverseWithdrawal undoes a completed withdrawal, crediting the original
// amount back. Super admin only; a reason is mandatory.
func (g *Gateway) ReverseWithdrawal(ctx context.Context, admin *domain.Admin, txnID uuid.UUID, reason string) (*domain.Transaction, error) {
	if reason == "" {
		return nil, domain.Validationf("reversal reason is required")
	}
	txn, err := g.load(ctx, admin, domain.ActionReverseWithdrawal, txnID, domain.TypeWithdrawal, domain.StatusReversed)
	if err != nil {
		return nil, err
	}
	err = g.store.SettleTransaction(ctx, Settle{
		TxnID:   txnID,
		From:    txn.Status,
		To:      domain.StatusReversed,
		AdminID: admin.ID,
		Note:    reason,
		Delta:   txn.Amount,
		Audit:   g.auditEntry(admin, "reverse_withdrawal", txn, map[string]any{"amount": txn.Amount.String(), "reason": reason}),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Withdrawal reversed", "transaction_id", txnID, "amount", txn.Amount, "admin_id", admin.ID)
	return g.store.TransactionByID(ctx, txnID)
}

// load runs the checks shared by every transition: capability first, then
// existence, type and state machine legality.
func (g *Gateway) load(ctx context.Context, admin *domain.Admin, action domain.Action, txnID uuid.UUID, txnType domain.TransactionType, to domain.TransactionStatus) (*domain.Transaction, error) {
	if !admin.Role.Can(action) {
		return nil, domain.ErrForbidden
	}
	txn, err := g.store.TransactionByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn.Type != txnType {
		return nil, domain.Validationf("transaction is not a %s", txnType)
	}
	if !domain.CanTransition(txn.Type, txn.Status, to) {
		return nil, domain.ErrInvalidStateTransition
	}
	return txn, nil
}

func (g *Gateway) auditEntry(admin *domain.Admin, action string, txn *domain.Transaction, detail map[string]any) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    admin.ID,
		AdminName:  admin.Name,
		Action:     action,
		TargetType: "transaction",
		TargetID:   txn.ID.String(),
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
}

func (g *Gateway) notification(event string, txn *domain.Transaction) *domain.NotificationJob {
	if g.notifyURL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"event": event,
		"data": map[string]any{
			"transaction_id": txn.ID,
			"customer_id":    txn.CustomerID,
			"amount":         txn.Amount,
			"timestamp":      time.Now().UTC(),
		},
	})
	if err != nil {
		slog.Error("Failed to marshal notification payload", "event", event, "error", err)
		return nil
	}
	return &domain.NotificationJob{
		ID:        uuid.New(),
		URL:       g.notifyURL,
		Payload:   payload,
		Status:    domain.JobPending,
		NextRunAt: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
}
