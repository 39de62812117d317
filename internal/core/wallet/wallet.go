// Package wallet is the customer-facing service: signup and login, deposit
// initiation and confirmation against the mobile-money paybill, withdrawal
// requests and account reads.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
	"github.com/dolaglobo/mmf-api/internal/core/security"
)

type Store interface {
	CreateCustomerWithAccount(ctx context.Context, customer *domain.Customer, account *domain.Account) error
	CustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	CustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error)
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	TransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	TransitionTransaction(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) error
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error)
}

type Service struct {
	store      Store
	minAmount  decimal.Decimal
	paybill    string
	annualRate decimal.Decimal
}

func NewService(store Store, minAmount decimal.Decimal, paybill string, annualRate decimal.Decimal) *Service {
	return &Service{store: store, minAmount: minAmount, paybill: paybill, annualRate: annualRate}
}

// Signup registers a customer and opens their zero-balance account.
func (s *Service) Signup(ctx context.Context, phone, name, pin string) (*domain.Customer, error) {
	phone, err := domain.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Validationf("name is required")
	}
	if !domain.ValidPIN(pin) {
		return nil, domain.Validationf("PIN must be exactly 4 digits")
	}
	if existing, err := s.store.CustomerByPhone(ctx, phone); err == nil && existing != nil {
		return nil, domain.Validationf("phone number already registered")
	}

	hash, err := security.HashPIN(pin)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Phone:     phone,
		Name:      name,
		PINHash:   hash,
		IsActive:  true,
		CreatedAt: now,
	}
	account := &domain.Account{
		ID:                  uuid.New(),
		CustomerID:          customer.ID,
		Balance:             decimal.Zero,
		TotalInterestEarned: decimal.Zero,
		CreatedAt:           now,
	}
	if err := s.store.CreateCustomerWithAccount(ctx, customer, account); err != nil {
		return nil, err
	}
	slog.Info("Customer registered", "customer_id", customer.ID, "phone", phone)
	return customer, nil
}

// Login verifies phone + PIN and returns the customer.
func (s *Service) Login(ctx context.Context, phone, pin string) (*domain.Customer, error) {
	phone, err := domain.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	customer, err := s.store.CustomerByPhone(ctx, phone)
	if err != nil {
		return nil, domain.Validationf("invalid phone number or PIN")
	}
	if !customer.IsActive || !security.VerifyPIN(pin, customer.PINHash) {
		return nil, domain.Validationf("invalid phone number or PIN")
	}
	return customer, nil
}

// Snapshot is the account read-model: balance plus the derived daily
// interest and estimated annual yield at the current rate.
type Snapshot struct {
	Account              *domain.Account `json:"account"`
	DailyInterest        decimal.Decimal `json:"daily_interest"`
	EstimatedAnnualYield decimal.Decimal `json:"estimated_annual_yield"`
}

// Account returns the customer's account snapshot.
func (s *Service) Account(ctx context.Context, customerID uuid.UUID) (*Snapshot, error) {
	acc, err := s.store.AccountByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	daily := domain.RoundKES(acc.Balance.Mul(s.annualRate).Div(decimal.NewFromInt(365)))
	return &Snapshot{
		Account:              acc,
		DailyInterest:        daily,
		EstimatedAnnualYield: domain.RoundKES(acc.Balance.Mul(s.annualRate)),
	}, nil
}

// DepositInstructions tell the customer how to pay the amount in on the
// mobile-money rail.
type DepositInstructions struct {
	Paybill          string   `json:"paybill"`
	AccountReference string   `json:"account_reference"`
	Steps            []string `json:"steps"`
}

// InitiateDeposit creates a pending deposit and returns the paybill
// instructions. The transaction waits for the customer's payment
// confirmation before staff can verify it.
func (s *Service) InitiateDeposit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, *DepositInstructions, error) {
	customer, err := s.activeCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateAmount(amount, s.minAmount); err != nil {
		return nil, nil, err
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Type:        domain.TypeDeposit,
		Amount:      domain.RoundKES(amount),
		Status:      domain.StatusPending,
		Description: "Deposit via M-Pesa Paybill " + s.paybill,
		MpesaNumber: customer.Phone,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, nil, err
	}

	instructions := &DepositInstructions{
		Paybill:          s.paybill,
		AccountReference: customer.Phone,
		Steps: []string{
			"Go to M-Pesa on your phone",
			"Select 'Lipa na M-Pesa'",
			"Select 'Pay Bill'",
			"Enter Business Number: " + s.paybill,
			"Enter Account Number: " + customer.Phone,
			fmt.Sprintf("Enter Amount: KES %s", txn.Amount.StringFixed(0)),
			"Enter your M-Pesa PIN and confirm",
		},
	}
	slog.Info("Deposit initiated", "transaction_id", txn.ID, "customer_id", customerID, "amount", txn.Amount)
	return txn, instructions, nil
}

// ConfirmDeposit is the caller-asserted mobile-money confirmation: the
// deposit moves to pending_verification and waits for staff approval.
func (s *Service) ConfirmDeposit(ctx context.Context, customerID, txnID uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.store.TransactionByID(ctx, txnID)
	if err != nil {
		return nil, err
	}
	if txn.CustomerID != customerID || txn.Type != domain.TypeDeposit {
		return nil, domain.ErrNotFound
	}
	if !domain.CanTransition(txn.Type, txn.Status, domain.StatusPendingVerification) {
		return nil, domain.ErrInvalidStateTransition
	}
	if err := s.store.TransitionTransaction(ctx, txnID, txn.Status, domain.StatusPendingVerification); err != nil {
		return nil, err
	}
	slog.Info("Deposit confirmed by customer", "transaction_id", txnID, "customer_id", customerID)
	return s.store.TransactionByID(ctx, txnID)
}

// RequestWithdrawal files a pending withdrawal to the customer's M-Pesa
// number. The balance must cover it now, though the authoritative check
// happens again at payout time.
func (s *Service) RequestWithdrawal(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	customer, err := s.activeCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount, s.minAmount); err != nil {
		return nil, err
	}
	acc, err := s.store.AccountByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if acc.Balance.LessThan(amount) {
		return nil, domain.ErrInsufficientFunds
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Type:        domain.TypeWithdrawal,
		Amount:      domain.RoundKES(amount),
		Status:      domain.StatusPending,
		Description: "Withdrawal to M-Pesa " + customer.Phone,
		MpesaNumber: customer.Phone,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	slog.Info("Withdrawal requested", "transaction_id", txn.ID, "customer_id", customerID, "amount", txn.Amount)
	return txn, nil
}

// Transactions lists the customer's own history, newest-first.
func (s *Service) Transactions(ctx context.Context, customerID uuid.UUID, page domain.Page) ([]domain.Transaction, int, error) {
	return s.store.ListTransactions(ctx, domain.TransactionFilter{
		CustomerID: &customerID,
		Page:       page.Normalize(),
	})
}

// Profile returns the customer's own record.
func (s *Service) Profile(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	return s.store.CustomerByID(ctx, customerID)
}

func (s *Service) activeCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	customer, err := s.store.CustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, domain.ErrForbidden
	}
	return customer, nil
}
