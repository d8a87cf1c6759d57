package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Company{},
		&types.FundingProgram{},
		&types.Document{},
		&types.UserTemplate{},
		&types.StyleProfile{},
	)
}

// EnsureDocumentIndexes adds the composite lookup index used by get-or-create.
// Both postgres and sqlite accept the statement.
func EnsureDocumentIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_document_company_program_type
		ON document (company_id, funding_program_id, type);
	`).Error; err != nil {
		return fmt.Errorf("create idx_document_company_program_type: %w", err)
	}
	return nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureDocumentIndexes(s.db); err != nil {
		s.log.Error("Document index migration failed", "error", err)
		return err
	}
	return nil
}
