package utils

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nextride/db"
)

// StartRetentionWorker prunes old audit logs and read notifications on a
// 24 hour cadence. Policy: audit logs older than 30 days, notifications
// older than 90 days.
func StartRetentionWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runCleanup()
			case <-ctx.Done():
				Logger.Info("Retention Worker shutting down...")
				return
			}
		}
	}()
}

func runCleanup() {
	Logger.Info("Running retention cleanup...")

	auditCutoff := time.Now().AddDate(0, 0, -30)
	result, err := db.Pool.Exec(context.Background(),
		`DELETE FROM external_api_logs WHERE "createdAt" < $1`, auditCutoff)
	if err != nil {
		Logger.Error("Audit log cleanup failed", zap.Error(err))
	} else {
		Logger.Info("Audit log cleanup completed", zap.Int64("deletedRows", result.RowsAffected()))
	}

	notifCutoff := time.Now().AddDate(0, 0, -90)
	result, err = db.Pool.Exec(context.Background(),
		`DELETE FROM notifications WHERE "createdAt" < $1`, notifCutoff)
	if err != nil {
		Logger.Error("Notification cleanup failed", zap.Error(err))
	} else {
		Logger.Info("Notification cleanup completed", zap.Int64("deletedRows", result.RowsAffected()))
	}
}
