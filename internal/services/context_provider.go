package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/grounding"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

// ContextProvider assembles the factual and rules context for a document from the
// company and funding program rows.
type ContextProvider interface {
	grounding.Provider
	Rules(ctx context.Context, fundingProgramID *uuid.UUID) (string, error)
	Inputs(ctx context.Context, doc *documents.Document) (batch.Inputs, error)
}

type contextProvider struct {
	log       *logger.Logger
	companies repos.CompanyRepo
	programs  repos.FundingProgramRepo
}

func NewContextProvider(log *logger.Logger, companies repos.CompanyRepo, programs repos.FundingProgramRepo) ContextProvider {
	return &contextProvider{
		log:       log.With("service", "ContextProvider"),
		companies: companies,
		programs:  programs,
	}
}

func (p *contextProvider) FactualContext(ctx context.Context, companyID uuid.UUID) (grounding.FactualContext, error) {
	const op = "context.FactualContext"
	company, err := p.companies.GetByID(dbctx.Context{Ctx: ctx}, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grounding.FactualContext{}, domainagg.NewError(domainagg.CodeNotFound, op, "company not found", err)
		}
		return grounding.FactualContext{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	out := grounding.FactualContext{
		CompanyName: company.Name,
		Enrichment:  company.EnrichmentText,
	}
	if len(company.Profile) > 0 {
		profile, perr := grounding.ParseProfile(company.Profile)
		if perr != nil {
			p.log.Warn("company profile unreadable, falling back to enrichment text", "company_id", companyID, "error", perr)
		} else {
			out.Profile = profile
		}
	}
	return out, nil
}

// Rules returns the funding program's guideline summary, or "" when the document has no
// program or the program carries no summary.
func (p *contextProvider) Rules(ctx context.Context, fundingProgramID *uuid.UUID) (string, error) {
	if fundingProgramID == nil || *fundingProgramID == uuid.Nil {
		return "", nil
	}
	program, err := p.programs.GetByID(dbctx.Context{Ctx: ctx}, *fundingProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Warn("funding program missing, generating without rules", "funding_program_id", *fundingProgramID)
			return "", nil
		}
		return "", domainagg.Wrap(domainagg.CodeInternal, "context.Rules", err)
	}
	return strings.TrimSpace(program.RulesSummary), nil
}

func (p *contextProvider) Inputs(ctx context.Context, doc *documents.Document) (batch.Inputs, error) {
	if doc == nil {
		return batch.Inputs{}, domainagg.NewError(domainagg.CodeValidation, "context.Inputs", "missing document", nil)
	}
	factual, err := p.FactualContext(ctx, doc.CompanyID)
	if err != nil {
		return batch.Inputs{}, err
	}
	rules, err := p.Rules(ctx, doc.FundingProgramID)
	if err != nil {
		return batch.Inputs{}, err
	}
	return batch.Inputs{Factual: factual, Rules: rules}, nil
}
