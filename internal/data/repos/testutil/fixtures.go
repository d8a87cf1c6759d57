package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vorhaben-backend/internal/domain"
)

func SeedCompany(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Company {
	tb.Helper()
	c := &types.Company{
		ID:         uuid.New(),
		OwnerEmail: "owner@example.com",
		Name:       name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedFundingProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, title, rules string) *types.FundingProgram {
	tb.Helper()
	p := &types.FundingProgram{
		ID:           uuid.New(),
		Title:        title,
		RulesSummary: rules,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed funding program: %v", err)
	}
	return p
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, sections ...types.Section) *types.Document {
	tb.Helper()
	d := &types.Document{
		ID:        uuid.New(),
		CompanyID: companyID,
		Type:      types.DocumentTypeVorhabensbeschreibung,
	}
	if err := d.SetContent(types.Content{Sections: sections}); err != nil {
		tb.Fatalf("seed document content: %v", err)
	}
	if err := d.SetMessages(nil); err != nil {
		tb.Fatalf("seed document history: %v", err)
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}
