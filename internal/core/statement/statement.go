// Package statement builds period statements and runs the statement request
// lifecycle.
package statement

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// Store is the persistence the generator needs. TransitionStatementRequest
// must apply the status move, the audit entry and the queued notification
// atomically, conditional on the current status.
type Store interface {
	AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error)
	TransactionsInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]domain.Transaction, error)
	CreateStatementRequest(ctx context.Context, req *domain.StatementRequest) error
	StatementRequestByID(ctx context.Context, id uuid.UUID) (*domain.StatementRequest, error)
	ListStatementRequests(ctx context.Context, filter domain.StatementFilter) ([]domain.StatementRequest, int, error)
	TransitionStatementRequest(ctx context.Context, id uuid.UUID, from, to domain.StatementStatus, adminID uuid.UUID, note string, entry *domain.AuditEntry, job *domain.NotificationJob) error
}

type Service struct {
	store     Store
	notifyURL string
}

func NewService(store Store, notifyURL string) *Service {
	return &Service{store: store, notifyURL: notifyURL}
}

// Summarize builds the statement for the last N months: totals per type over
// completed activity, net change, the raw transactions and the current
// account snapshot.
func (s *Service) Summarize(ctx context.Context, customerID uuid.UUID, months int) (*domain.Statement, error) {
	if !domain.ValidStatementMonths(months) {
		return nil, domain.Validationf("statement period must be 1, 3, 6 or 12 months")
	}
	acc, err := s.store.AccountByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, -months, 0)
	txns, err := s.store.TransactionsInRange(ctx, customerID, start, end)
	if err != nil {
		return nil, err
	}

	summary := domain.StatementSummary{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TotalInterest:    decimal.Zero,
	}
	for _, t := range txns {
		switch {
		case t.Type == domain.TypeDeposit && t.Status == domain.StatusCompleted:
			summary.TotalDeposits = summary.TotalDeposits.Add(t.Amount)
		case t.Type == domain.TypeWithdrawal && t.Status == domain.StatusCompleted:
			summary.TotalWithdrawals = summary.TotalWithdrawals.Add(t.Amount)
		case t.Type == domain.TypeInterest && t.Status == domain.StatusCompleted:
			summary.TotalInterest = summary.TotalInterest.Add(t.Amount)
		}
	}
	summary.NetChange = summary.TotalDeposits.Sub(summary.TotalWithdrawals).Add(summary.TotalInterest)
	summary.TransactionCount = len(txns)

	return &domain.Statement{
		CustomerID:   customerID,
		StartDate:    start,
		EndDate:      end,
		Summary:      summary,
		Transactions: txns,
		Account:      acc,
	}, nil
}

// Request files a customer's statement request for the period ending now.
func (s *Service) Request(ctx context.Context, customerID uuid.UUID, months int, email string) (*domain.StatementRequest, error) {
	if !domain.ValidStatementMonths(months) {
		return nil, domain.Validationf("statement period must be 1, 3, 6 or 12 months")
	}
	now := time.Now().UTC()
	req := &domain.StatementRequest{
		ID:         uuid.New(),
		CustomerID: customerID,
		Months:     months,
		StartDate:  now.AddDate(0, -months, 0),
		EndDate:    now,
		Status:     domain.StatementPending,
		Email:      email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateStatementRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.StatementRequest, error) {
	return s.store.StatementRequestByID(ctx, id)
}

// List returns requests matching the filter, newest-first.
func (s *Service) List(ctx context.Context, filter domain.StatementFilter) ([]domain.StatementRequest, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.store.ListStatementRequests(ctx, filter)
}

// Start moves a pending request into processing.
func (s *Service) Start(ctx context.Context, admin *domain.Admin, id uuid.UUID, note string) (*domain.StatementRequest, error) {
	return s.transition(ctx, admin, id, domain.StatementProcessing, note, false)
}

// Complete marks a processing request as prepared.
func (s *Service) Complete(ctx context.Context, admin *domain.Admin, id uuid.UUID, note string) (*domain.StatementRequest, error) {
	return s.transition(ctx, admin, id, domain.StatementCompleted, note, false)
}

// MarkSent records delivery of a completed statement and fires the
// notification hook.
func (s *Service) MarkSent(ctx context.Context, admin *domain.Admin, id uuid.UUID, note string) (*domain.StatementRequest, error) {
	return s.transition(ctx, admin, id, domain.StatementSent, note, true)
}

// Reject declines a pending request. A reason is mandatory.
func (s *Service) Reject(ctx context.Context, admin *domain.Admin, id uuid.UUID, reason string) (*domain.StatementRequest, error) {
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}
	return s.transition(ctx, admin, id, domain.StatementRejected, reason, false)
}

func (s *Service) transition(ctx context.Context, admin *domain.Admin, id uuid.UUID, to domain.StatementStatus, note string, notify bool) (*domain.StatementRequest, error) {
	if !admin.Role.Can(domain.ActionProcessStatement) {
		return nil, domain.ErrForbidden
	}
	req, err := s.store.StatementRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionStatement(req.Status, to) {
		return nil, domain.ErrInvalidStateTransition
	}

	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		AdminID:    admin.ID,
		AdminName:  admin.Name,
		Action:     "statement_" + string(to),
		TargetType: "statement_request",
		TargetID:   id.String(),
		Detail:     map[string]any{"months": req.Months, "note": note},
		CreatedAt:  time.Now().UTC(),
	}
	var job *domain.NotificationJob
	if notify {
		job = s.notification(req)
	}
	if err := s.store.TransitionStatementRequest(ctx, id, req.Status, to, admin.ID, note, entry, job); err != nil {
		return nil, err
	}
	slog.Info("Statement request transitioned", "request_id", id, "to", to, "admin_id", admin.ID)
	return s.store.StatementRequestByID(ctx, id)
}

func (s *Service) notification(req *domain.StatementRequest) *domain.NotificationJob {
	if s.notifyURL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"event": "statement.sent",
		"data": map[string]any{
			"request_id":  req.ID,
			"customer_id": req.CustomerID,
			"months":      req.Months,
			"email":       req.Email,
			"timestamp":   time.Now().UTC(),
		},
	})
	if err != nil {
		slog.Error("Failed to marshal notification payload", "error", err)
		return nil
	}
	return &domain.NotificationJob{
		ID:        uuid.New(),
		URL:       s.notifyURL,
		Payload:   payload,
		Status:    domain.JobPending,
		NextRunAt: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
}
