package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// insertAudit appends an entry inside an open transaction. A nil entry is a
// no-op so call sites don't have to branch.
func insertAudit(ctx context.Context, tx pgx.Tx, entry *domain.AuditEntry) error {
	if entry == nil {
		return nil
	}
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal audit detail: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (id, admin_id, admin_name, action, target_type, target_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.AdminID, entry.AdminName, entry.Action, entry.TargetType, entry.TargetID, detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *Repository) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := insertAudit(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListAudit returns entries newest-first. There is no write-back path: the
// log is read-only once written.
func (r *Repository) ListAudit(ctx context.Context, page domain.Page) ([]domain.AuditEntry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, admin_id, admin_name, action, target_type, target_id, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, page.Normalize().Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var detail []byte
		if err := rows.Scan(&e.ID, &e.AdminID, &e.AdminName, &e.Action, &e.TargetType, &e.TargetID, &detail, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, 0, err
			}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
