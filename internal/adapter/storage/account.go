package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

const accountColumns = `id, customer_id, balance, total_interest_earned, last_interest_date, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.CustomerID, &a.Balance, &a.TotalInterestEarned, &a.LastInterestDate, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) AccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *Repository) AccountByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1`, customerID)
	return scanAccount(row)
}

// ApplyCredit adds to the balance and inserts the paired transaction row.
func (r *Repository) ApplyCredit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, amount, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApplyDebit subtracts from the balance, conditional on the balance covering
// the amount, and inserts the paired transaction row. The balance can never
// go negative: an uncovered debit matches no row and nothing changes.
func (r *Repository) ApplyDebit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txn *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1`, amount, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.AccountByID(ctx, accountID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApplyAdjustment applies a signed manual correction together with its
// transaction and audit rows. Negative deltas carry the same guard as
// debits.
func (r *Repository) ApplyAdjustment(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal, txn *domain.Transaction, entry *domain.AuditEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var tag pgconn.CommandTag
	if delta.IsNegative() {
		tag, err = tx.Exec(ctx,
			`UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance >= -$1`, delta, accountID)
	} else {
		tag, err = tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, accountID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.AccountByID(ctx, accountID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AccrueInterest credits the day's interest once. The update is conditional
// on the accrual stamp and a positive balance, so a concurrent duplicate run
// matches no row and reports not-applied instead of double-crediting.
func (r *Repository) AccrueInterest(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, day time.Time, txn *domain.Transaction) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET balance = balance + $1,
		    total_interest_earned = total_interest_earned + $1,
		    last_interest_date = $2::date
		WHERE id = $3
		  AND balance > 0
		  AND (last_interest_date IS NULL OR last_interest_date <> $2::date)`,
		amount, day, accountID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// EligibleAccounts returns accounts that can earn interest on the given day.
func (r *Repository) EligibleAccounts(ctx context.Context, day time.Time) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE balance > 0
		  AND (last_interest_date IS NULL OR last_interest_date <> $1::date)
		ORDER BY created_at ASC`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Balance, &a.TotalInterestEarned, &a.LastInterestDate, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SumBalances is the fund's assets under management.
func (r *Repository) SumBalances(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&sum)
	return sum, err
}
