package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const purgeOrphansQuery = `
DELETE FROM payroll p
 WHERE NOT EXISTS (SELECT 1 FROM employees e WHERE e.emp_code = p.emp_code)
`

// PurgeOrphanPayroll deletes payroll rows whose employee no longer exists
// and returns how many were removed.
func PurgeOrphanPayroll(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, purgeOrphansQuery)
	if err != nil {
		return 0, fmt.Errorf("purge orphan payroll: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

// StartOrphanPayrollCleaner runs PurgeOrphanPayroll on the cron schedule
// until ctx is cancelled.
func StartOrphanPayrollCleaner(
	ctx context.Context,
	db *sql.DB,
	schedule string,
	log *zap.Logger,
) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := c.AddFunc(schedule, func() {
		removed, err := PurgeOrphanPayroll(ctx, db)
		if err != nil {
			log.Error("failed to clean orphan payroll", zap.Error(err))
			return
		}
		if removed > 0 {
			log.Info("cleaned orphan payroll", zap.Int64("removed", removed))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule orphan payroll cleaner: %w", err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return c, nil
}
