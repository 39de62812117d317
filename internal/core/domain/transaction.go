package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeInterest   TransactionType = "interest"
)

type TransactionStatus string

const (
	StatusPending             TransactionStatus = "pending"
	StatusPendingVerification TransactionStatus = "pending_verification"
	StatusProcessing          TransactionStatus = "processing"
	StatusCompleted           TransactionStatus = "completed"
	StatusRejected            TransactionStatus = "rejected"
	StatusReversed            TransactionStatus = "reversed"
)

// Transaction is one ledger-affecting event. Status only ever moves forward
// through the per-type transition table below.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	MpesaNumber string            `json:"mpesa_number,omitempty"`
	AdminNote   string            `json:"admin_note,omitempty"`
	ProcessedBy *uuid.UUID        `json:"processed_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// transitions is the allowed status graph per transaction type. Deposits wait
// for the customer's payment confirmation, then for staff verification.
// Withdrawals are approved, paid out, and may be reversed by a super admin.
// Interest transactions are created completed and never move.
var transitions = map[TransactionType]map[TransactionStatus][]TransactionStatus{
	TypeDeposit: {
		StatusPending:             {StatusPendingVerification},
		StatusPendingVerification: {StatusCompleted, StatusRejected},
	},
	TypeWithdrawal: {
		StatusPending:    {StatusProcessing, StatusRejected},
		StatusProcessing: {StatusCompleted},
		StatusCompleted:  {StatusReversed},
	},
	TypeInterest: {},
}

// CanTransition reports whether a transaction of the given type may move
// from one status to another.
func CanTransition(t TransactionType, from, to TransactionStatus) bool {
	for _, next := range transitions[t][from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from the
// transaction's current status.
func (t *Transaction) Terminal() bool {
	return len(transitions[t.Type][t.Status]) == 0
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	CustomerID *uuid.UUID
	Type       TransactionType
	Status     TransactionStatus
	From       *time.Time
	To         *time.Time
	Page
}
