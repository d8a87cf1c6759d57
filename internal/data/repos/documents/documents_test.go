package documents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/repos/testutil"
	types "github.com/yungbote/vorhaben-backend/internal/domain"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
)

func TestDocumentRepoFindForCompany(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewDocumentRepo(db, testutil.Logger(t))

	company := testutil.SeedCompany(t, ctx, db, "Muster GmbH")
	program := testutil.SeedFundingProgram(t, ctx, db, "ZIM", "Regeln")

	got, err := repo.FindForCompany(dbc, company.ID, nil, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	plain := &types.Document{CompanyID: company.ID}
	require.NoError(t, repo.Create(dbc, plain))
	assert.Equal(t, types.DocumentTypeVorhabensbeschreibung, plain.Type)

	scoped := &types.Document{CompanyID: company.ID, FundingProgramID: &program.ID}
	require.NoError(t, repo.Create(dbc, scoped))

	got, err = repo.FindForCompany(dbc, company.ID, nil, types.DocumentTypeVorhabensbeschreibung)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, plain.ID, got.ID)

	got, err = repo.FindForCompany(dbc, company.ID, &program.ID, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, scoped.ID, got.ID)

	content, err := got.Content()
	require.NoError(t, err)
	assert.Empty(t, content.Sections)

	rows, err := repo.ListByCompany(dbc, company.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDocumentRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDocumentRepo(db, testutil.Logger(t))

	_, err := repo.GetByID(dbctx.Context{Ctx: context.Background()}, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByID(dbctx.Context{Ctx: context.Background()}, uuid.Nil)
	require.Error(t, err)
}

func TestDocumentRepoUsesTransaction(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewDocumentRepo(db, testutil.Logger(t))
	company := testutil.SeedCompany(t, ctx, db, "Tx GmbH")

	tx := db.Begin()
	require.NoError(t, tx.Error)
	doc := &types.Document{CompanyID: company.ID}
	require.NoError(t, repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, doc))
	require.NoError(t, tx.Rollback().Error)

	_, err := repo.GetByID(dbctx.Context{Ctx: ctx}, doc.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserTemplateRepoScopesByOwner(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewUserTemplateRepo(db, testutil.Logger(t))

	row := &types.UserTemplate{
		OwnerEmail: " Anna@Example.com ",
		Name:       "Eigene Vorlage",
		Structure:  datatypes.JSON(`{"sections":[{"id":"1","title":"Ziele"}]}`),
	}
	require.NoError(t, repo.Create(dbc, row))
	assert.Equal(t, "anna@example.com", row.OwnerEmail)

	got, err := repo.GetForOwner(dbc, row.ID, "ANNA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Eigene Vorlage", got.Name)

	_, err = repo.GetForOwner(dbc, row.ID, "other@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.ListByOwner(dbc, "anna@example.com", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.ListByOwner(dbc, "other@example.com", 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.Error(t, repo.Create(dbc, &types.UserTemplate{Name: "x"}))
}

func TestStyleProfileRepoUpsertAndLatest(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewStyleProfileRepo(db, testutil.Logger(t))

	latest, err := repo.Latest(dbc)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Upsert(dbc, &types.StyleProfile{
		CombinedHash: "abc",
		SourceCount:  1,
		Profile:      datatypes.JSON(`{"tone":"sachlich"}`),
	}))
	require.NoError(t, repo.Upsert(dbc, &types.StyleProfile{
		CombinedHash: "abc",
		SourceCount:  2,
		Profile:      datatypes.JSON(`{"tone":"formal"}`),
	}))

	got, err := repo.GetByHash(dbc, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.SourceCount)
	assert.JSONEq(t, `{"tone":"formal"}`, string(got.Profile))

	latest, err = repo.Latest(dbc)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "abc", latest.CombinedHash)

	require.Error(t, repo.Upsert(dbc, &types.StyleProfile{}))
}

func TestCompanyAndFundingProgramRepos(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	companies := NewCompanyRepo(db, testutil.Logger(t))
	programs := NewFundingProgramRepo(db, testutil.Logger(t))

	c := &types.Company{Name: "Alpha AG"}
	require.NoError(t, companies.Create(dbc, c))
	require.NoError(t, companies.UpdateFields(dbc, c.ID, map[string]interface{}{"enrichment_text": "Webseite"}))

	got, err := companies.GetByID(dbc, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Webseite", got.EnrichmentText)

	p := &types.FundingProgram{Title: "KMU-innovativ", TemplateName: "wtt_v1"}
	require.NoError(t, programs.Create(dbc, p))
	gotP, err := programs.GetByID(dbc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "wtt_v1", gotP.TemplateName)
}
