package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

const stmtColumns = `id, customer_id, months, start_date, end_date, status, email, admin_note, processed_by, created_at, updated_at`

func scanStatementRequest(row pgx.Row) (*domain.StatementRequest, error) {
	var s domain.StatementRequest
	err := row.Scan(&s.ID, &s.CustomerID, &s.Months, &s.StartDate, &s.EndDate, &s.Status,
		&s.Email, &s.AdminNote, &s.ProcessedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) CreateStatementRequest(ctx context.Context, req *domain.StatementRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO statement_requests (id, customer_id, months, start_date, end_date, status, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.CustomerID, req.Months, req.StartDate, req.EndDate, req.Status, req.Email, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create statement request: %w", err)
	}
	return nil
}

func (r *Repository) StatementRequestByID(ctx context.Context, id uuid.UUID) (*domain.StatementRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+stmtColumns+` FROM statement_requests WHERE id = $1`, id)
	return scanStatementRequest(row)
}

func (r *Repository) ListStatementRequests(ctx context.Context, filter domain.StatementFilter) ([]domain.StatementRequest, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.CustomerID != nil {
		where += ` AND customer_id = ` + arg(*filter.CustomerID)
	}
	if filter.Status != "" {
		where += ` AND status = ` + arg(filter.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM statement_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + stmtColumns + ` FROM statement_requests` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(filter.Page.Normalize().Limit) + ` OFFSET ` + arg(filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []domain.StatementRequest
	for rows.Next() {
		var s domain.StatementRequest
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.Months, &s.StartDate, &s.EndDate, &s.Status,
			&s.Email, &s.AdminNote, &s.ProcessedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, s)
	}
	return reqs, total, rows.Err()
}

// TransitionStatementRequest moves a request between statuses, conditional
// on the current one, together with its audit entry and any queued
// notification.
func (r *Repository) TransitionStatementRequest(ctx context.Context, id uuid.UUID, from, to domain.StatementStatus, adminID uuid.UUID, note string, entry *domain.AuditEntry, job *domain.NotificationJob) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE statement_requests
		SET status = $1,
		    processed_by = $2,
		    admin_note = CASE WHEN $3 <> '' THEN $3 ELSE admin_note END,
		    updated_at = NOW()
		WHERE id = $4 AND status = $5`,
		to, adminID, note, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}

	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	if err := insertJob(ctx, tx, job); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
