package statement_test

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
	"github.com/dolaglobo/mmf-api/internal/core/statement"
)

func newService(t *testing.T) (*statement.Service, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	customer := &domain.Customer{ID: uuid.New(), Phone: "+254712345678", Name: "Amina", IsActive: true, CreatedAt: time.Now().UTC()}
	account := &domain.Account{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Balance:    decimal.NewFromInt(5000),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateCustomerWithAccount(context.Background(), customer, account))
	return statement.NewService(store, "https://hooks.example.com/notify"), store, customer.ID
}

func seedTxn(t *testing.T, store *memory.Store, customerID uuid.UUID, typ domain.TransactionType, status domain.TransactionStatus, amount string, age time.Duration) {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &domain.Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Status:     status,
		CreatedAt:  time.Now().UTC().Add(-age),
	}))
}

func manager() *domain.Admin {
	return &domain.Admin{ID: uuid.New(), Name: "Ops", Role: domain.RoleTransactionManager, IsActive: true}
}

func TestSummarize(t *testing.T) {
	svc, store, customerID := newService(t)
	ctx := context.Background()

	day := 24 * time.Hour
	seedTxn(t, store, customerID, domain.TypeDeposit, domain.StatusCompleted, "3000", 10*day)
	seedTxn(t, store, customerID, domain.TypeDeposit, domain.StatusCompleted, "2000", 40*day)
	seedTxn(t, store, customerID, domain.TypeWithdrawal, domain.StatusCompleted, "1000", 5*day)
	seedTxn(t, store, customerID, domain.TypeInterest, domain.StatusCompleted, "12.5", 2*day)
	// pending and rejected activity appears in the listing but not the totals
	seedTxn(t, store, customerID, domain.TypeDeposit, domain.StatusPending, "900", 1*day)
	seedTxn(t, store, customerID, domain.TypeWithdrawal, domain.StatusRejected, "800", 3*day)
	// too old for a 3-month statement
	seedTxn(t, store, customerID, domain.TypeDeposit, domain.StatusCompleted, "7000", 120*day)

	stmt, err := svc.Summarize(ctx, customerID, 3)
	require.NoError(t, err)

	assert.True(t, stmt.Summary.TotalDeposits.Equal(decimal.NewFromInt(5000)), "deposits %s", stmt.Summary.TotalDeposits)
	assert.True(t, stmt.Summary.TotalWithdrawals.Equal(decimal.NewFromInt(1000)))
	assert.True(t, stmt.Summary.TotalInterest.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, stmt.Summary.NetChange.Equal(decimal.RequireFromString("4012.5")), "net %s", stmt.Summary.NetChange)
	assert.Equal(t, 6, stmt.Summary.TransactionCount)
	assert.Len(t, stmt.Transactions, 6)
	require.NotNil(t, stmt.Account)
	assert.True(t, stmt.Account.Balance.Equal(decimal.NewFromInt(5000)))
}

func TestSummarizeExcludesReversedWithdrawals(t *testing.T) {
	svc, store, customerID := newService(t)

	seedTxn(t, store, customerID, domain.TypeWithdrawal, domain.StatusCompleted, "1000", time.Hour)
	seedTxn(t, store, customerID, domain.TypeWithdrawal, domain.StatusReversed, "500", time.Hour)

	stmt, err := svc.Summarize(context.Background(), customerID, 1)
	require.NoError(t, err)
	assert.True(t, stmt.Summary.TotalWithdrawals.Equal(decimal.NewFromInt(1000)))
}

func TestSummarizeInvalidPeriod(t *testing.T) {
	svc, _, customerID := newService(t)

	for _, months := range []int{0, 2, 5, 24} {
		_, err := svc.Summarize(context.Background(), customerID, months)
		assert.ErrorIs(t, err, domain.ErrValidation, "months=%d", months)
	}
}

func TestRequestLifecycle(t *testing.T) {
	svc, store, customerID := newService(t)
	ctx := context.Background()
	admin := manager()

	req, err := svc.Request(ctx, customerID, 3, "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatementPending, req.Status)
	assert.Equal(t, 3, req.Months)

	req, err = svc.Start(ctx, admin, req.ID, "on it")
	require.NoError(t, err)
	assert.Equal(t, domain.StatementProcessing, req.Status)

	req, err = svc.Complete(ctx, admin, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatementCompleted, req.Status)

	req, err = svc.MarkSent(ctx, admin, req.ID, "emailed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatementSent, req.Status)
	require.NotNil(t, req.ProcessedBy)
	assert.Equal(t, admin.ID, *req.ProcessedBy)

	// one audit entry per transition, one notification on send
	assert.Len(t, store.AuditEntries(), 3)
	jobs := store.Jobs()
	require.Len(t, jobs, 1)
	assert.Contains(t, string(jobs[0].Payload), "statement.sent")
}

func TestRequestInvalidMonths(t *testing.T) {
	svc, _, customerID := newService(t)

	_, err := svc.Request(context.Background(), customerID, 7, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRejectRequest(t *testing.T) {
	svc, _, customerID := newService(t)
	ctx := context.Background()
	admin := manager()

	req, err := svc.Request(ctx, customerID, 6, "")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, admin, req.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	req, err = svc.Reject(ctx, admin, req.ID, "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, domain.StatementRejected, req.Status)

	// rejected is terminal
	_, err = svc.Start(ctx, admin, req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestTransitionGuards(t *testing.T) {
	svc, _, customerID := newService(t)
	ctx := context.Background()

	req, err := svc.Request(ctx, customerID, 1, "")
	require.NoError(t, err)

	viewer := &domain.Admin{ID: uuid.New(), Name: "Viewer", Role: domain.RoleViewOnly, IsActive: true}
	_, err = svc.Start(ctx, viewer, req.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// cannot send before the statement is prepared
	_, err = svc.MarkSent(ctx, manager(), req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestListByStatus(t *testing.T) {
	svc, _, customerID := newService(t)
	ctx := context.Background()
	admin := manager()

	first, err := svc.Request(ctx, customerID, 1, "")
	require.NoError(t, err)
	_, err = svc.Request(ctx, customerID, 3, "")
	require.NoError(t, err)

	_, err = svc.Start(ctx, admin, first.ID, "")
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, domain.StatementFilter{Status: domain.StatementPending})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.StatementPending, pending[0].Status)
}
