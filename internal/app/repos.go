package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type Repos struct {
	Documents       repos.DocumentRepo
	Companies       repos.CompanyRepo
	FundingPrograms repos.FundingProgramRepo
	UserTemplates   repos.UserTemplateRepo
	StyleProfiles   repos.StyleProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Documents:       repos.NewDocumentRepo(db, log),
		Companies:       repos.NewCompanyRepo(db, log),
		FundingPrograms: repos.NewFundingProgramRepo(db, log),
		UserTemplates:   repos.NewUserTemplateRepo(db, log),
		StyleProfiles:   repos.NewStyleProfileRepo(db, log),
	}
}
