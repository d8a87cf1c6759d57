package aggregates_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/vorhaben-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	"github.com/yungbote/vorhaben-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
)

func newDocumentAggregate(t *testing.T, policy headings.Policy) (domainagg.DocumentAggregate, *aggtestutil.HooksRecorder, *documents.Document) {
	t.Helper()
	db := testutil.DB(t)
	ctx := context.Background()
	company := testutil.SeedCompany(t, ctx, db, "Muster GmbH")
	doc := testutil.SeedDocument(t, ctx, db, company.ID,
		documents.Section{ID: "1", Title: "Ziele", Type: documents.SectionTypeText},
		documents.Section{ID: "1.1", Title: "Gesamtziel", Type: documents.SectionTypeText},
	)
	hooks := &aggtestutil.HooksRecorder{}
	agg := aggregates.NewDocumentAggregate(aggregates.DocumentAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: testutil.Logger(t), Hooks: hooks},
		Documents: repos.NewDocumentRepo(db, testutil.Logger(t)),
		Headings:  policy,
	})
	return agg, hooks, doc
}

func setContent(t *testing.T, doc *documents.Document, sections ...documents.Section) {
	t.Helper()
	require.NoError(t, doc.SetContent(documents.Content{Sections: sections}))
}

func TestDocumentAggregateSaveAdvancesVersion(t *testing.T) {
	agg, hooks, seeded := newDocumentAggregate(t, headings.Policy{})
	ctx := context.Background()

	doc, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Version)

	setContent(t, doc,
		documents.Section{ID: "1", Title: "Ziele", Content: "Text"},
		documents.Section{ID: "1.1", Title: "Gesamtziel"},
	)
	require.NoError(t, doc.AppendMessages(documents.ChatMessage{Role: documents.RoleUser, Text: "hallo"}))
	require.NoError(t, agg.Save(ctx, doc))
	assert.Equal(t, 1, doc.Version)

	reloaded, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version)
	content, err := reloaded.Content()
	require.NoError(t, err)
	assert.Equal(t, "Text", content.Sections[0].Content)
	msgs, err := reloaded.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hallo", msgs[0].Text)

	require.NotEmpty(t, hooks.Operations)
	assert.Equal(t, "success", hooks.Operations[len(hooks.Operations)-1].Status)
}

func TestDocumentAggregateSaveRejectsStaleVersion(t *testing.T) {
	agg, hooks, seeded := newDocumentAggregate(t, headings.Policy{})
	ctx := context.Background()

	first, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	second, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)

	first.Title = "eins"
	require.NoError(t, agg.Save(ctx, first))

	second.Title = "zwei"
	err = agg.Save(ctx, second)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "got %v", err)
	assert.Equal(t, 0, second.Version)
	assert.Contains(t, hooks.Conflicts, "Docgen.Document.Save")

	reloaded, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "eins", reloaded.Title)
}

func TestDocumentAggregateSaveEnforcesHeadingLock(t *testing.T) {
	agg, _, seeded := newDocumentAggregate(t, headings.Policy{})
	ctx := context.Background()

	doc, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	doc.HeadingsConfirmed = true
	require.NoError(t, agg.Save(ctx, doc))

	renamed := doc.Clone()
	setContent(t, renamed,
		documents.Section{ID: "1", Title: "Projektziele"},
		documents.Section{ID: "1.1", Title: "Gesamtziel"},
	)
	err = agg.Save(ctx, renamed)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInvariantViolation), "got %v", err)

	unlocked := doc.Clone()
	unlocked.HeadingsConfirmed = false
	err = agg.Save(ctx, unlocked)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInvariantViolation), "got %v", err)

	edited := doc.Clone()
	setContent(t, edited,
		documents.Section{ID: "1", Title: "Ziele", Content: "Neuer Text"},
		documents.Section{ID: "1.1", Title: "Gesamtziel"},
	)
	require.NoError(t, agg.Save(ctx, edited))
}

func TestDocumentAggregateLoadMissing(t *testing.T) {
	agg, _, _ := newDocumentAggregate(t, headings.Policy{})
	_, err := agg.Load(context.Background(), uuid.Nil)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)

	_, err = agg.Load(context.Background(), uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}

func TestDocumentAggregateSurfacesCommitFailure(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	company := testutil.SeedCompany(t, ctx, db, "Rollback GmbH")
	seeded := testutil.SeedDocument(t, ctx, db, company.ID, documents.Section{ID: "1", Title: "Ziele"})

	runner := &aggtestutil.InjectedTxRunner{FailCommit: aggregates.RetryableError("commit lost")}
	agg := aggregates.NewDocumentAggregate(aggregates.DocumentAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Runner: runner},
		Documents: repos.NewDocumentRepo(db, testutil.Logger(t)),
	})

	doc, err := agg.Load(ctx, seeded.ID)
	require.NoError(t, err)
	doc.Title = "neu"
	err = agg.Save(ctx, doc)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeRetryable), "got %v", err)
	assert.Equal(t, 0, doc.Version)
	assert.Equal(t, 1, runner.RollbackCalls)
}
