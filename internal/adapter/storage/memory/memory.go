// Package memory is an in-memory implementation of the core store
// interfaces, used as a test double. It mirrors the Postgres adapter's
// semantics exactly: conditional updates under one lock, the same sentinel
// errors, and no partial application.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/approval"
	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

type Store struct {
	mu sync.Mutex

	customers  map[uuid.UUID]*domain.Customer
	accounts   map[uuid.UUID]*domain.Account
	txns       map[uuid.UUID]*domain.Transaction
	statements map[uuid.UUID]*domain.StatementRequest
	admins     map[uuid.UUID]*domain.Admin
	auditLog   []domain.AuditEntry
	jobs       []domain.NotificationJob
}

func NewStore() *Store {
	return &Store{
		customers:  make(map[uuid.UUID]*domain.Customer),
		accounts:   make(map[uuid.UUID]*domain.Account),
		txns:       make(map[uuid.UUID]*domain.Transaction),
		statements: make(map[uuid.UUID]*domain.StatementRequest),
		admins:     make(map[uuid.UUID]*domain.Admin),
	}
}

// --- customers ---

func (s *Store) CreateCustomerWithAccount(ctx context.Context, customer *domain.Customer, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *customer
	a := *account
	s.customers[c.ID] = &c
	s.accounts[a.ID] = &a
	return nil
}

func (s *Store) CustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) CustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Customer
	needle := strings.ToLower(filter.Search)
	for _, c := range s.customers {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Phone), needle) &&
			!strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, filter.Page), len(all), nil
}

func (s *Store) SetCustomerActive(ctx context.Context, customerID uuid.UUID, active bool, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = active
	s.appendAudit(entry)
	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers), nil
}

// --- accounts ---

func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByCustomerLocked(customerID)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) accountByCustomerLocked(customerID uuid.UUID) *domain.Account {
	for _, a := range s.accounts {
		if a.CustomerID == customerID {
			return a
		}
	}
	return nil
}

func (s *Store) ApplyCredit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	a.Balance = a.Balance.Add(amount)
	t := *txn
	s.txns[t.ID] = &t
	return nil
}

func (s *Store) ApplyDebit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Balance.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	t := *txn
	s.txns[t.ID] = &t
	return nil
}

func (s *Store) ApplyAdjustment(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, txn *domain.Transaction, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotFound
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientFunds
	}
	a.Balance = next
	t := *txn
	s.txns[t.ID] = &t
	s.appendAudit(entry)
	return nil
}

func (s *Store) AccrueInterest(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, day time.Time, txn *domain.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if a.Balance.LessThanOrEqual(decimal.Zero) || a.AccruedToday(day) {
		return false, nil
	}
	a.Balance = a.Balance.Add(amount)
	a.TotalInterestEarned = a.TotalInterestEarned.Add(amount)
	stamp := day
	a.LastInterestDate = &stamp
	t := *txn
	s.txns[t.ID] = &t
	return true, nil
}

func (s *Store) EligibleAccounts(ctx context.Context, day time.Time) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.Balance.GreaterThan(decimal.Zero) && !a.AccruedToday(day) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SumBalances(ctx context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, a := range s.accounts {
		sum = sum.Add(a.Balance)
	}
	return sum, nil
}

// --- transactions ---

func (s *Store) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *txn
	s.txns[t.ID] = &t
	return nil
}

func (s *Store) TransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) TransitionTransaction(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok || t.Status != from {
		return domain.ErrInvalidStateTransition
	}
	t.Status = to
	return nil
}

func (s *Store) SettleTransaction(ctx context.Context, settle approval.Settle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[settle.TxnID]
	if !ok || t.Status != settle.From {
		return domain.ErrInvalidStateTransition
	}

	if !settle.Delta.IsZero() {
		a := s.accountByCustomerLocked(t.CustomerID)
		if a == nil {
			return domain.ErrNotFound
		}
		next := a.Balance.Add(settle.Delta)
		if next.IsNegative() {
			return domain.ErrInsufficientFunds
		}
		a.Balance = next
	}

	t.Status = settle.To
	adminID := settle.AdminID
	t.ProcessedBy = &adminID
	if settle.Note != "" {
		t.AdminNote = settle.Note
	}
	if settle.MarkCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
	}
	s.appendAudit(settle.Audit)
	if settle.Job != nil {
		s.jobs = append(s.jobs, *settle.Job)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Transaction
	for _, t := range s.txns {
		if filter.CustomerID != nil && t.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, filter.Page), len(all), nil
}

func (s *Store) TransactionsInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.txns {
		if t.CustomerID != customerID || t.CreatedAt.Before(from) || t.CreatedAt.After(to) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- statement requests ---

func (s *Store) CreateStatementRequest(ctx context.Context, req *domain.StatementRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.statements[cp.ID] = &cp
	return nil
}

func (s *Store) StatementRequestByID(ctx context.Context, id uuid.UUID) (*domain.StatementRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.statements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *Store) ListStatementRequests(ctx context.Context, filter domain.StatementFilter) ([]domain.StatementRequest, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.StatementRequest
	for _, req := range s.statements {
		if filter.CustomerID != nil && req.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		all = append(all, *req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, filter.Page), len(all), nil
}

func (s *Store) TransitionStatementRequest(ctx context.Context, id uuid.UUID, from, to domain.StatementStatus, adminID uuid.UUID, note string, entry *domain.AuditEntry, job *domain.NotificationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.statements[id]
	if !ok || req.Status != from {
		return domain.ErrInvalidStateTransition
	}
	req.Status = to
	req.ProcessedBy = &adminID
	if note != "" {
		req.AdminNote = note
	}
	req.UpdatedAt = time.Now().UTC()
	s.appendAudit(entry)
	if job != nil {
		s.jobs = append(s.jobs, *job)
	}
	return nil
}

// --- audit ---

func (s *Store) appendAudit(entry *domain.AuditEntry) {
	if entry != nil {
		s.auditLog = append(s.auditLog, *entry)
	}
}

func (s *Store) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAudit(entry)
	return nil
}

func (s *Store) ListAudit(ctx context.Context, page domain.Page) ([]domain.AuditEntry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.AuditEntry, len(s.auditLog))
	copy(all, s.auditLog)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page), len(all), nil
}

// AuditEntries returns every recorded entry, oldest-first. Test helper.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEntry, len(s.auditLog))
	copy(out, s.auditLog)
	return out
}

// Jobs returns every queued notification. Test helper.
func (s *Store) Jobs() []domain.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.NotificationJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// --- admins ---

func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.admins), nil
}

func (s *Store) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *admin
	s.admins[cp.ID] = &cp
	return nil
}

func (s *Store) AdminByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) AdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Admin
	for _, a := range s.admins {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateAdminRole(ctx context.Context, id uuid.UUID, role domain.Role, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Role = role
	s.appendAudit(entry)
	return nil
}

func paginate[T any](all []T, page domain.Page) []T {
	p := page.Normalize()
	start := (p.Page - 1) * p.Limit
	if start >= len(all) {
		return nil
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]T, end-start)
	copy(out, all[start:end])
	return out
}
