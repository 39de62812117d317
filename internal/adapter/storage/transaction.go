package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dolaglobo/mmf-api/internal/core/approval"
	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

const txnColumns = `id, customer_id, type, amount, status, description, mpesa_number, admin_note, processed_by, created_at, completed_at`

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, customer_id, type, amount, status, description, mpesa_number, admin_note, processed_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		txn.ID, txn.CustomerID, txn.Type, txn.Amount, txn.Status, txn.Description,
		txn.MpesaNumber, txn.AdminNote, txn.ProcessedBy, txn.CreatedAt, txn.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Amount, &t.Status, &t.Description,
		&t.MpesaNumber, &t.AdminNote, &t.ProcessedBy, &t.CreatedAt, &t.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) TransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

// TransitionTransaction moves a transaction between statuses with no side
// effects. The update is conditional on the current status, so a concurrent
// move surfaces as ErrInvalidStateTransition instead of being applied twice.
func (r *Repository) TransitionTransaction(ctx context.Context, id uuid.UUID, from, to domain.TransactionStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}
	return nil
}

// SettleTransaction applies one workflow transition and everything paired
// with it (balance delta, audit entry, queued notification) as a single
// database transaction.
func (r *Repository) SettleTransaction(ctx context.Context, s approval.Settle) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var customerID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE transactions
		SET status = $1,
		    processed_by = $2,
		    admin_note = CASE WHEN $3 <> '' THEN $3 ELSE admin_note END,
		    completed_at = CASE WHEN $4 THEN NOW() ELSE completed_at END
		WHERE id = $5 AND status = $6
		RETURNING customer_id`,
		s.To, s.AdminID, s.Note, s.MarkCompleted, s.TxnID, s.From).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrInvalidStateTransition
	}
	if err != nil {
		return err
	}

	if !s.Delta.IsZero() {
		if s.Delta.IsNegative() {
			tag, err := tx.Exec(ctx,
				`UPDATE accounts SET balance = balance + $1 WHERE customer_id = $2 AND balance >= -$1`,
				s.Delta, customerID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrInsufficientFunds
			}
		} else {
			tag, err := tx.Exec(ctx,
				`UPDATE accounts SET balance = balance + $1 WHERE customer_id = $2`, s.Delta, customerID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrNotFound
			}
		}
	}

	if err := insertAudit(ctx, tx, s.Audit); err != nil {
		return err
	}
	if err := insertJob(ctx, tx, s.Job); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListTransactions supports the admin filters: customer, type, status and
// date range, newest-first with pagination.
func (r *Repository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CustomerID != nil {
		where += ` AND customer_id = ` + arg(*filter.CustomerID)
	}
	if filter.Type != "" {
		where += ` AND type = ` + arg(filter.Type)
	}
	if filter.Status != "" {
		where += ` AND status = ` + arg(filter.Status)
	}
	if filter.From != nil {
		where += ` AND created_at >= ` + arg(*filter.From)
	}
	if filter.To != nil {
		where += ` AND created_at <= ` + arg(*filter.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + txnColumns + ` FROM transactions` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(filter.Page.Normalize().Limit) + ` OFFSET ` + arg(filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Amount, &t.Status, &t.Description,
			&t.MpesaNumber, &t.AdminNote, &t.ProcessedBy, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}

// TransactionsInRange returns a customer's transactions inside the period,
// newest-first, for statement generation.
func (r *Repository) TransactionsInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+txnColumns+` FROM transactions
		WHERE customer_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC`, customerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Amount, &t.Status, &t.Description,
			&t.MpesaNumber, &t.AdminNote, &t.ProcessedBy, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
