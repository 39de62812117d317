package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a wallet holder. Customers are never hard-deleted, only
// deactivated by an admin.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	PINHash   string    `json:"-"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Account holds a customer's fund balance and interest accrual state.
// One account per customer. Balance is mutated only through the ledger.
type Account struct {
	ID                  uuid.UUID       `json:"id"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	Balance             decimal.Decimal `json:"balance"`
	TotalInterestEarned decimal.Decimal `json:"total_interest_earned"`
	LastInterestDate    *time.Time      `json:"last_interest_date,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// AccruedToday reports whether interest was already credited on the given day.
func (a *Account) AccruedToday(day time.Time) bool {
	if a.LastInterestDate == nil {
		return false
	}
	y1, m1, d1 := a.LastInterestDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Admin is a staff account. The first admin ever registered is promoted to
// super_admin so the system is never left without one.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditEntry records one privileged admin action. Entries are append-only:
// nothing in the system updates or deletes them.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	AdminID    uuid.UUID      `json:"admin_id"`
	AdminName  string         `json:"admin_name"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NotificationJob is a queued outbound webhook, delivered by the worker.
type NotificationJob struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	Payload   []byte    `json:"payload"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	NextRunAt time.Time `json:"next_run_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification job statuses.
const (
	JobPending   = "PENDING"
	JobCompleted = "COMPLETED"
	JobFailed    = "FAILED"
)

// Page holds pagination parameters shared by the list queries.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page/limit to sane values.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search string // matches phone or name
	Page
}
