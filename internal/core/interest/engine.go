// Package interest computes and credits daily simple interest.
package interest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

var daysPerYear = decimal.NewFromInt(365)

// Store is the persistence the engine needs. AccrueInterest must apply the
// credit, the accrual stamp and the interest transaction as one atomic unit,
// conditional on the account not having accrued on the given day and holding
// a positive balance; it returns false when the guard matched nothing.
type Store interface {
	AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error)
	EligibleAccounts(ctx context.Context, day time.Time) ([]domain.Account, error)
	AccrueInterest(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, day time.Time, txn *domain.Transaction) (bool, error)
}

// AuditRecorder appends audit entries for distribution runs.
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

type Engine struct {
	store      Store
	audit      AuditRecorder
	annualRate decimal.Decimal
}

func NewEngine(store Store, audit AuditRecorder, annualRate decimal.Decimal) *Engine {
	return &Engine{store: store, audit: audit, annualRate: annualRate}
}

// Failure records one account the batch could not process.
type Failure struct {
	AccountID uuid.UUID `json:"account_id"`
	Error     string    `json:"error"`
}

// BatchResult aggregates a distribution run. Per-account failures are
// collected here, never fatal to the run.
type BatchResult struct {
	Count            int             `json:"count"`
	TotalDistributed decimal.Decimal `json:"total_distributed"`
	Skipped          int             `json:"skipped"`
	Failures         []Failure       `json:"failures,omitempty"`
}

// DailyInterest is the day's accrual for a balance at an annual rate,
// rounded to cents.
func DailyInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return domain.RoundKES(balance.Mul(annualRate).Div(daysPerYear))
}

// DistributeOne credits today's interest to a single customer's account.
// A zero rate means the configured annual rate; a custom rate is reserved
// for super admins. Accounts that already accrued today, or hold no balance,
// earn nothing.
func (e *Engine) DistributeOne(ctx context.Context, admin *domain.Admin, customerID uuid.UUID, rate decimal.Decimal) (*domain.Transaction, error) {
	if !admin.Role.Can(domain.ActionDistributeInterest) {
		return nil, domain.ErrForbidden
	}
	rate, err := e.resolveRate(admin, rate)
	if err != nil {
		return nil, err
	}

	acc, err := e.store.AccountByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	today := time.Now().UTC()
	if acc.AccruedToday(today) {
		return nil, domain.Validationf("interest already distributed today")
	}
	if acc.Balance.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Validationf("no balance to earn interest")
	}

	txn, applied, err := e.accrue(ctx, acc, rate, today)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.Validationf("interest already distributed today")
	}

	e.recordRun(ctx, admin, "distribute_interest", acc.ID.String(), map[string]any{
		"customer_id": customerID.String(),
		"interest":    txn.Amount.String(),
		"annual_rate": rate.String(),
	})
	return txn, nil
}

// DistributeAll runs the daily accrual over every eligible account. One bad
// account does not abort the run; failures come back in the result.
func (e *Engine) DistributeAll(ctx context.Context, admin *domain.Admin, rate decimal.Decimal) (*BatchResult, error) {
	if !admin.Role.Can(domain.ActionDistributeInterestAll) {
		return nil, domain.ErrForbidden
	}
	rate, err := e.resolveRate(admin, rate)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	accounts, err := e.store.EligibleAccounts(ctx, today)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{TotalDistributed: decimal.Zero}
	for i := range accounts {
		acc := &accounts[i]
		txn, applied, err := e.accrue(ctx, acc, rate, today)
		if err != nil {
			slog.Error("Interest accrual failed", "account_id", acc.ID, "error", err)
			result.Failures = append(result.Failures, Failure{AccountID: acc.ID, Error: err.Error()})
			continue
		}
		if !applied {
			result.Skipped++
			continue
		}
		result.Count++
		result.TotalDistributed = result.TotalDistributed.Add(txn.Amount)
	}

	slog.Info("Interest distribution run finished",
		"credited", result.Count,
		"skipped", result.Skipped,
		"failed", len(result.Failures),
		"total", result.TotalDistributed,
	)
	e.recordRun(ctx, admin, "distribute_interest_all", "all", map[string]any{
		"count":             result.Count,
		"skipped":           result.Skipped,
		"failed":            len(result.Failures),
		"total_distributed": result.TotalDistributed.String(),
		"annual_rate":       rate.String(),
	})
	return result, nil
}

func (e *Engine) accrue(ctx context.Context, acc *domain.Account, rate decimal.Decimal, today time.Time) (*domain.Transaction, bool, error) {
	interest := DailyInterest(acc.Balance, rate)
	if interest.LessThanOrEqual(decimal.Zero) {
		return nil, false, nil
	}
	txn := &domain.Transaction{
		ID:          uuid.New(),
		CustomerID:  acc.CustomerID,
		Type:        domain.TypeInterest,
		Amount:      interest,
		Status:      domain.StatusCompleted,
		Description: "Daily interest earned",
		CreatedAt:   today,
		CompletedAt: &today,
	}
	applied, err := e.store.AccrueInterest(ctx, acc.ID, interest, today, txn)
	if err != nil {
		return nil, false, err
	}
	return txn, applied, nil
}

func (e *Engine) resolveRate(admin *domain.Admin, rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.IsZero() {
		return e.annualRate, nil
	}
	if !admin.Role.Can(domain.ActionDistributeInterestAll) {
		return decimal.Zero, domain.ErrForbidden
	}
	if rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, domain.Validationf("annual rate must be between 0 and 1")
	}
	return rate, nil
}

func (e *Engine) recordRun(ctx context.Context, admin *domain.Admin, action, targetID string, detail map[string]any) {
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    admin.ID,
		AdminName:  admin.Name,
		Action:     action,
		TargetType: "account",
		TargetID:   targetID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "action", action, "error", err)
	}
}
