package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dolaglobo/mmf-api/internal/core/notifications"
)

// StartNotificationWorker polls the notification queue and delivers
// statement and withdrawal events.
func StartNotificationWorker(db *pgxpool.Pool) {
	go func() {
		slog.Info("👷 Notification worker started")
		for {
			processJobs(db)
			time.Sleep(5 * time.Second)
		}
	}()
}

func processJobs(db *pgxpool.Pool) {
	ctx := context.Background()

	query := `
		SELECT id, url, payload, attempts
		FROM notification_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var id string
	var url string
	var payload []byte
	var attempts int

	err := db.QueryRow(ctx, query).Scan(&id, &url, &payload, &attempts)
	if err != nil {
		return
	}

	slog.Info("Worker: delivering notification", "url", url, "job_id", id)

	sendErr := notifications.SendWebhook(url, payload)
	if sendErr != nil {
		slog.Error("Worker: notification failed", "error", sendErr, "attempts", attempts)
		nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)

		if attempts >= 5 {
			db.Exec(ctx, "UPDATE notification_jobs SET status = 'FAILED' WHERE id = $1", id)
			slog.Error("Worker: job marked as FAILED (max attempts reached)", "job_id", id)
		} else {
			db.Exec(ctx, "UPDATE notification_jobs SET status = 'PENDING', attempts = attempts + 1, next_run_at = $2 WHERE id = $1", id, nextRun)
			slog.Info("Worker: scheduled retry", "next_run", nextRun)
		}
	} else {
		slog.Info("✅ Worker: notification delivered", "job_id", id)
		db.Exec(ctx, "UPDATE notification_jobs SET status = 'COMPLETED' WHERE id = $1", id)
	}
}
