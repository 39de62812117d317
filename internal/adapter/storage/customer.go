package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// CreateCustomerWithAccount inserts the customer and their zero-balance
// account in one transaction.
func (r *Repository) CreateCustomerWithAccount(ctx context.Context, customer *domain.Customer, account *domain.Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO customers (id, phone, name, pin_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		customer.ID, customer.Phone, customer.Name, customer.PINHash, customer.IsActive, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, customer_id, balance, total_interest_earned, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.CustomerID, account.Balance, account.TotalInterestEarned, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return tx.Commit(ctx)
}

const customerColumns = `id, phone, name, pin_hash, is_active, created_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Phone, &c.Name, &c.PINHash, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CustomerByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (r *Repository) CustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone)
	return scanCustomer(row)
}

// ListCustomers supports free-text search over phone and name.
func (r *Repository) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	where := ``
	args := []any{}
	if filter.Search != "" {
		where = `WHERE phone ILIKE $1 OR name ILIKE $1`
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		customerColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Phone, &c.Name, &c.PINHash, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

// SetCustomerActive flips the activation flag and appends the audit entry
// atomically.
func (r *Repository) SetCustomerActive(ctx context.Context, customerID uuid.UUID, active bool, entry *domain.AuditEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE customers SET is_active = $1 WHERE id = $2`, active, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) CountCustomers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	return count, err
}
