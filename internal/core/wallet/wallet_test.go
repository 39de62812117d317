package wallet_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolaglobo/mmf-api/internal/adapter/storage/memory"
	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/wallet"
)

func newWallet(t *testing.T) (*wallet.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := wallet.NewService(store, decimal.NewFromInt(50), "4114517", decimal.RequireFromString("0.15"))
	return svc, store
}

func signup(t *testing.T, svc *wallet.Service) *domain.Customer {
	t.Helper()
	customer, err := svc.Signup(context.Background(), "0712345678", "Amina Odhiambo", "1234")
	require.NoError(t, err)
	return customer
}

func TestSignup(t *testing.T) {
	svc, store := newWallet(t)
	ctx := context.Background()

	customer := signup(t, svc)
	assert.Equal(t, "+254712345678", customer.Phone)
	assert.True(t, customer.IsActive)
	assert.NotEmpty(t, customer.PINHash)
	assert.NotEqual(t, "1234", customer.PINHash)

	acc, err := store.AccountByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "712345678", "Amina", "1234")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Signup(ctx, "0712345678", "", "1234")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Signup(ctx, "0712345678", "Amina", "12ab")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSignupDuplicatePhone(t *testing.T) {
	svc, _ := newWallet(t)
	signup(t, svc)

	// same number, different formatting
	_, err := svc.Signup(context.Background(), "+254712345678", "Another", "5678")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	got, err := svc.Login(ctx, "0712345678", "1234")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)

	_, err = svc.Login(ctx, "0712345678", "9999")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Login(ctx, "0700000000", "1234")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAccountSnapshot(t *testing.T) {
	svc, store := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	acc, err := store.AccountByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, store.ApplyCredit(ctx, acc.ID, decimal.NewFromInt(10000), &domain.Transaction{ID: uuid.New(), CustomerID: customer.ID, Type: domain.TypeDeposit, Amount: decimal.NewFromInt(10000), Status: domain.StatusCompleted}))

	snap, err := svc.Account(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, snap.Account.Balance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, snap.DailyInterest.Equal(decimal.RequireFromString("4.11")), "got %s", snap.DailyInterest)
	assert.True(t, snap.EstimatedAnnualYield.Equal(decimal.NewFromInt(1500)))
}

func TestInitiateDeposit(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	txn, instructions, err := svc.InitiateDeposit(ctx, customer.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, txn.Status)
	assert.Equal(t, customer.Phone, txn.MpesaNumber)
	assert.Contains(t, txn.Description, "4114517")

	assert.Equal(t, "4114517", instructions.Paybill)
	assert.Equal(t, customer.Phone, instructions.AccountReference)
	assert.NotEmpty(t, instructions.Steps)
}

func TestInitiateDepositBelowMinimum(t *testing.T) {
	svc, _ := newWallet(t)
	customer := signup(t, svc)

	_, _, err := svc.InitiateDeposit(context.Background(), customer.ID, decimal.NewFromInt(49))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConfirmDeposit(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	txn, _, err := svc.InitiateDeposit(ctx, customer.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmDeposit(ctx, customer.ID, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingVerification, confirmed.Status)

	// confirming twice is an invalid move
	_, err = svc.ConfirmDeposit(ctx, customer.ID, txn.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestConfirmDepositWrongCustomer(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	txn, _, err := svc.InitiateDeposit(ctx, customer.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	other, err := svc.Signup(ctx, "0722000111", "Brian", "4321")
	require.NoError(t, err)

	_, err = svc.ConfirmDeposit(ctx, other.ID, txn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestWithdrawal(t *testing.T) {
	svc, store := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)

	acc, err := store.AccountByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.NoError(t, store.ApplyCredit(ctx, acc.ID, decimal.NewFromInt(1000), &domain.Transaction{ID: uuid.New(), CustomerID: customer.ID, Type: domain.TypeDeposit, Amount: decimal.NewFromInt(1000), Status: domain.StatusCompleted}))

	txn, err := svc.RequestWithdrawal(ctx, customer.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, txn.Status)

	// the request itself moves no money
	after, err := store.AccountByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestRequestWithdrawalInsufficientFunds(t *testing.T) {
	svc, _ := newWallet(t)
	customer := signup(t, svc)

	_, err := svc.RequestWithdrawal(context.Background(), customer.ID, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestInactiveCustomerBlocked(t *testing.T) {
	svc, store := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)
	require.NoError(t, store.SetCustomerActive(ctx, customer.ID, false, nil))

	_, _, err := svc.InitiateDeposit(ctx, customer.ID, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RequestWithdrawal(ctx, customer.ID, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Login(ctx, "0712345678", "1234")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransactions(t *testing.T) {
	svc, _ := newWallet(t)
	ctx := context.Background()
	customer := signup(t, svc)
	other, err := svc.Signup(ctx, "0722000111", "Brian", "4321")
	require.NoError(t, err)

	_, _, err = svc.InitiateDeposit(ctx, customer.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, _, err = svc.InitiateDeposit(ctx, other.ID, decimal.NewFromInt(200))
	require.NoError(t, err)

	txns, total, err := svc.Transactions(ctx, customer.ID, domain.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, txns, 1)
	assert.Equal(t, customer.ID, txns[0].CustomerID)
}
