package repos

import (
	"github.com/yungbote/vorhaben-backend/internal/data/repos/documents"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type DocumentRepo = documents.DocumentRepo
type CompanyRepo = documents.CompanyRepo
type FundingProgramRepo = documents.FundingProgramRepo
type UserTemplateRepo = documents.UserTemplateRepo
type StyleProfileRepo = documents.StyleProfileRepo

func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, log)
}

func NewCompanyRepo(db *gorm.DB, log *logger.Logger) CompanyRepo {
	return documents.NewCompanyRepo(db, log)
}

func NewFundingProgramRepo(db *gorm.DB, log *logger.Logger) FundingProgramRepo {
	return documents.NewFundingProgramRepo(db, log)
}

func NewUserTemplateRepo(db *gorm.DB, log *logger.Logger) UserTemplateRepo {
	return documents.NewUserTemplateRepo(db, log)
}

func NewStyleProfileRepo(db *gorm.DB, log *logger.Logger) StyleProfileRepo {
	return documents.NewStyleProfileRepo(db, log)
}
