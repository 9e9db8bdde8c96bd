package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/coursehub-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return err
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates composite indexes the struct tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	stmts := map[string]string{
		"idx_job_run_status_created": `
			CREATE INDEX IF NOT EXISTS idx_job_run_status_created
			ON job_run (status, created_at)`,
		"idx_notification_group_user": `
			CREATE INDEX IF NOT EXISTS idx_notification_group_user
			ON notification (user_group, user_id, created_at)`,
		"idx_orders_buyer_status": `
			CREATE INDEX IF NOT EXISTS idx_orders_buyer_status
			ON orders (buyer_id, status)`,
		"idx_sub_course_position": `
			CREATE INDEX IF NOT EXISTS idx_sub_course_position
			ON course_content_sub (course_id, position)`,
	}
	for name, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
