package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

// insertJob queues a notification inside an open transaction, so the event
// and the state change it announces commit together. Nil is a no-op.
func insertJob(ctx context.Context, tx pgx.Tx, job *domain.NotificationJob) error {
	if job == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO notification_jobs (id, url, payload, status, attempts, next_run_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.URL, job.Payload, job.Status, job.Attempts, job.NextRunAt, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	return nil
}
