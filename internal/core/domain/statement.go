package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatementStatus string

const (
	StatementPending    StatementStatus = "pending"
	StatementProcessing StatementStatus = "processing"
	StatementCompleted  StatementStatus = "completed"
	StatementSent       StatementStatus = "sent"
	StatementRejected   StatementStatus = "rejected"
)

// statementTransitions is the request lifecycle: staff pick it up, prepare
// the statement, and send it; or reject it outright.
var statementTransitions = map[StatementStatus][]StatementStatus{
	StatementPending:    {StatementProcessing, StatementRejected},
	StatementProcessing: {StatementCompleted},
	StatementCompleted:  {StatementSent},
}

// CanTransitionStatement reports whether a statement request may move
// between the two statuses.
func CanTransitionStatement(from, to StatementStatus) bool {
	for _, next := range statementTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatementRequest is a customer's ask for a statement covering the last
// N months.
type StatementRequest struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Months      int             `json:"months"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Status      StatementStatus `json:"status"`
	Email       string          `json:"email,omitempty"`
	AdminNote   string          `json:"admin_note,omitempty"`
	ProcessedBy *uuid.UUID      `json:"processed_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidStatementMonths reports whether the requested period is offered.
func ValidStatementMonths(months int) bool {
	switch months {
	case 1, 3, 6, 12:
		return true
	}
	return false
}

// StatementSummary aggregates a customer's completed activity over a period.
// Reversed withdrawals do not count toward TotalWithdrawals.
type StatementSummary struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	NetChange        decimal.Decimal `json:"net_change"`
	TransactionCount int             `json:"transaction_count"`
}

// Statement is the full statement view: summary, raw transactions and the
// account snapshot at generation time.
type Statement struct {
	CustomerID   uuid.UUID        `json:"customer_id"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      time.Time        `json:"end_date"`
	Summary      StatementSummary `json:"summary"`
	Transactions []Transaction    `json:"transactions"`
	Account      *Account         `json:"account"`
}

// StatementFilter narrows statement request listings.
type StatementFilter struct {
	CustomerID *uuid.UUID
	Status     StatementStatus
	Page
}
