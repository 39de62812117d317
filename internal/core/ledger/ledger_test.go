package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolaglobo/mmf-api/internal/adapter/storage/memory"
	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/ledger"
)

func newLedger(t *testing.T) (*ledger.Service, *memory.Store, *domain.Account) {
	t.Helper()
	store := memory.NewStore()
	customer := &domain.Customer{ID: uuid.New(), Phone: "+254712345678", Name: "Amina", IsActive: true, CreatedAt: time.Now().UTC()}
	account := &domain.Account{
		ID:                  uuid.New(),
		CustomerID:          customer.ID,
		Balance:             decimal.NewFromInt(1000),
		TotalInterestEarned: decimal.Zero,
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, store.CreateCustomerWithAccount(context.Background(), customer, account))
	return ledger.NewService(store), store, account
}

func TestCredit(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()

	txn, err := svc.Credit(ctx, acc.ID, decimal.NewFromInt(500), domain.TypeDeposit, "Deposit via M-Pesa")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, txn.Status)
	assert.Equal(t, acc.CustomerID, txn.CustomerID)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1500)), "got %s", after.Balance)
}

func TestCreditRejectsNonPositive(t *testing.T) {
	svc, _, acc := newLedger(t)

	_, err := svc.Credit(context.Background(), acc.ID, decimal.Zero, domain.TypeDeposit, "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Credit(context.Background(), acc.ID, decimal.NewFromInt(-5), domain.TypeDeposit, "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDebit(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, acc.ID, decimal.NewFromInt(400), domain.TypeWithdrawal, "Withdrawal to M-Pesa")
	require.NoError(t, err)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(600)), "got %s", after.Balance)
}

func TestDebitInsufficientFunds(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, acc.ID, decimal.NewFromInt(1001), domain.TypeWithdrawal, "too much")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// account untouched
	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestDebitExactBalance(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, acc.ID, decimal.NewFromInt(1000), domain.TypeWithdrawal, "drain")
	require.NoError(t, err)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.IsZero())
}

func TestCreditDebitRoundTrip(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()

	amount := decimal.RequireFromString("123.45")
	_, err := svc.Credit(ctx, acc.ID, amount, domain.TypeDeposit, "in")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, acc.ID, amount, domain.TypeWithdrawal, "out")
	require.NoError(t, err)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1000)), "got %s", after.Balance)
}

func TestAdjust(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()
	admin := &domain.Admin{ID: uuid.New(), Name: "Root", Role: domain.RoleSuperAdmin, IsActive: true}

	txn, err := svc.Adjust(ctx, admin, acc.ID, decimal.NewFromInt(200), ledger.AdjustCredit, "reconciliation")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeDeposit, txn.Type)
	require.NotNil(t, txn.ProcessedBy)
	assert.Equal(t, admin.ID, *txn.ProcessedBy)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1200)))

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "adjust_balance", entries[0].Action)
	assert.Equal(t, "reconciliation", entries[0].Detail["reason"])
}

func TestAdjustDebitDirection(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()
	admin := &domain.Admin{ID: uuid.New(), Name: "Root", Role: domain.RoleSuperAdmin, IsActive: true}

	txn, err := svc.Adjust(ctx, admin, acc.ID, decimal.NewFromInt(300), ledger.AdjustDebit, "duplicate deposit")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeWithdrawal, txn.Type)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(700)))
}

func TestAdjustGuards(t *testing.T) {
	svc, store, acc := newLedger(t)
	ctx := context.Background()
	admin := &domain.Admin{ID: uuid.New(), Name: "Root", Role: domain.RoleSuperAdmin, IsActive: true}

	// only super admins adjust
	mgr := &domain.Admin{ID: uuid.New(), Name: "Ops", Role: domain.RoleTransactionManager, IsActive: true}
	_, err := svc.Adjust(ctx, mgr, acc.ID, decimal.NewFromInt(10), ledger.AdjustCredit, "r")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// a reason is mandatory
	_, err = svc.Adjust(ctx, admin, acc.ID, decimal.NewFromInt(10), ledger.AdjustCredit, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// debit adjustments cannot take the balance negative
	_, err = svc.Adjust(ctx, admin, acc.ID, decimal.NewFromInt(5000), ledger.AdjustDebit, "oops")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = svc.Adjust(ctx, admin, acc.ID, decimal.NewFromInt(10), "sideways", "r")
	assert.ErrorIs(t, err, domain.ErrValidation)

	after, err := store.AccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Empty(t, store.AuditEntries())
}
