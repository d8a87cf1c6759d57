package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/vorhaben-backend/internal/data/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/data/repos"
	"github.com/yungbote/vorhaben-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/chat"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/docgentest"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/editor"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/generation"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/styleguide"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/templates"
	"github.com/yungbote/vorhaben-backend/internal/pkg/dbctx"
	"github.com/yungbote/vorhaben-backend/internal/platform/ctxutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

type fixture struct {
	ctx       context.Context
	llm       *docgentest.LLM
	companies repos.CompanyRepo
	programs  repos.FundingProgramRepo
	profiles  repos.StyleProfileRepo
	docs      DocumentService
	chat      ChatService
	templates TemplateService
	style     StyleService
}

// echoBatch answers batch prompts with one paragraph per requested section id.
func echoBatch(req openai.Request) (string, error) {
	out := map[string]string{}
	_, task, _ := strings.Cut(req.User, "## 4. Aufgabe")
	task, _, _ = strings.Cut(task, "\nRegeln:")
	for _, line := range strings.Split(task, "\n") {
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		id, _, ok := strings.Cut(strings.TrimPrefix(line, "- "), ":")
		if ok {
			out[id] = "Text für " + id
		}
	}
	b, err := json.Marshal(out)
	return string(b), err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	db := testutil.DB(t)

	docRepo := repos.NewDocumentRepo(db, log)
	companies := repos.NewCompanyRepo(db, log)
	programs := repos.NewFundingProgramRepo(db, log)
	userTemplates := repos.NewUserTemplateRepo(db, log)
	profiles := repos.NewStyleProfileRepo(db, log)

	agg := aggregates.NewDocumentAggregate(aggregates.DocumentAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log},
		Documents: docRepo,
		Headings:  headings.Policy{},
	})

	registry, err := templates.NewRegistry(log, "")
	require.NoError(t, err)

	llm := docgentest.NewLLM()
	llm.Handler = echoBatch

	cache := styleguide.NewCache(log, styleguide.NewMemoryStore(), StyleProfileLoader(profiles), time.Minute)
	gen := batch.NewGenerator(log, llm, cache, batch.Config{MaxRetries: 0, Timeout: time.Second, TargetSize: 4})
	ed := editor.New(log, llm, cache, editor.Config{Timeout: time.Second})

	tmplSvc := NewTemplateService(log, registry, userTemplates)
	provider := NewContextProvider(log, companies, programs)
	pipeline := generation.NewPipeline(log, agg, tmplSvc.Resolver(), gen)
	session := chat.NewSession(log, agg, ed, llm, chat.Config{HistoryWindow: 3, TitleThreshold: 0.8, AnswerTimeout: time.Second})

	return &fixture{
		ctx:       ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{OwnerEmail: "anna@example.com"}),
		llm:       llm,
		companies: companies,
		programs:  programs,
		profiles:  profiles,
		docs:      NewDocumentService(log, agg, docRepo, companies, programs, tmplSvc.Resolver(), provider, pipeline),
		chat:      NewChatService(log, agg, session, provider),
		templates: tmplSvc,
		style:     NewStyleService(log, profiles, styleguide.NewExtractor(log, llm, time.Second), cache),
	}
}

func testDBC(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

func (f *fixture) company(t *testing.T) *documents.Company {
	t.Helper()
	c := &documents.Company{
		Name:    "Muster GmbH",
		Profile: datatypes.JSON(`{"company_name":"Muster GmbH","industry":"Maschinenbau"}`),
	}
	require.NoError(t, f.companies.Create(testDBC(f.ctx), c))
	return c
}

func sectionsOf(t *testing.T, doc *documents.Document) []documents.Section {
	t.Helper()
	c, err := doc.Content()
	require.NoError(t, err)
	return c.Sections
}

func TestGetOrCreateSeedsDefaultTemplateOnce(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)

	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, documents.DefaultTemplateName, doc.TemplateName)
	assert.Equal(t, "Vorhabensbeschreibung", doc.Title)
	secs := sectionsOf(t, doc)
	require.NotEmpty(t, secs)
	assert.Equal(t, "1", secs[0].ID)

	again, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, again.ID)
}

func TestGetOrCreateUsesOwnedUserTemplate(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)

	tmpl, err := f.templates.CreateUserTemplate(f.ctx, "Kurz", "", json.RawMessage(`{"sections":[{"id":"1","title":"Ziel"},{"id":"2","title":"Plan"}]}`))
	require.NoError(t, err)

	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{
		CompanyID:      c.ID,
		TemplateSource: documents.TemplateSourceUser,
		TemplateRef:    tmpl.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, doc.TemplateID)
	assert.Equal(t, tmpl.ID, *doc.TemplateID)
	assert.Len(t, sectionsOf(t, doc), 2)

	other := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{OwnerEmail: "bob@example.com"})
	c2 := f.company(t)
	_, err = f.docs.GetOrCreate(other, GetOrCreateInput{
		CompanyID:      c2.ID,
		TemplateSource: documents.TemplateSourceUser,
		TemplateRef:    tmpl.ID.String(),
	})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}

func TestGetOrCreateUnknownCompany(t *testing.T) {
	f := newFixture(t)
	_, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: uuid.New()})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}

func TestUpdateContentRespectsHeadingLock(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)
	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)

	secs := sectionsOf(t, doc)
	secs[0].Content = "Manuell geschrieben"
	updated, err := f.docs.UpdateContent(f.ctx, doc.ID, documents.Content{Sections: secs})
	require.NoError(t, err)
	assert.Equal(t, "Manuell geschrieben", sectionsOf(t, updated)[0].Content)

	confirmed, err := f.docs.ConfirmHeadings(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.HeadingsConfirmed)
	again, err := f.docs.ConfirmHeadings(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, confirmed.Version, again.Version)

	renamed := sectionsOf(t, confirmed)
	renamed[0].Title = "Neuer Titel"
	_, err = f.docs.UpdateContent(f.ctx, doc.ID, documents.Content{Sections: renamed})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInvariantViolation), "got %v", err)

	dup := sectionsOf(t, confirmed)
	dup[1].ID = dup[0].ID
	_, err = f.docs.UpdateContent(f.ctx, doc.ID, documents.Content{Sections: dup})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestConfirmHeadingsRejectsEmptyDocument(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)
	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)
	_, err = f.docs.UpdateContent(f.ctx, doc.ID, documents.Content{})
	require.NoError(t, err)

	_, err = f.docs.ConfirmHeadings(f.ctx, doc.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodePreconditionFailed), "got %v", err)

	res, err := f.docs.Generate(f.ctx, doc.ID, false)
	require.NoError(t, err)
	assert.NotEmpty(t, res.GeneratedIDs)
}

func TestGenerateFillsEveryTextSection(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)
	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)

	res, err := f.docs.Generate(f.ctx, doc.ID, false)
	require.NoError(t, err)
	assert.Empty(t, res.FailedBatches)

	stored, err := f.docs.Get(f.ctx, doc.ID)
	require.NoError(t, err)
	for _, sec := range sectionsOf(t, stored) {
		if sec.IsMilestoneTable() {
			assert.Empty(t, sec.Content, sec.ID)
			continue
		}
		assert.Equal(t, "Text für "+sec.ID, sec.Content)
	}
	for _, call := range f.llm.Calls() {
		assert.Contains(t, call.User, "Muster GmbH")
		assert.Contains(t, call.User, "Maschinenbau")
	}
}

func TestChatProposeAndConfirm(t *testing.T) {
	f := newFixture(t)
	c := f.company(t)
	doc, err := f.docs.GetOrCreate(f.ctx, GetOrCreateInput{CompanyID: c.ID})
	require.NoError(t, err)

	f.llm.Handler = func(openai.Request) (string, error) { return "Überarbeiteter Text", nil }
	res, err := f.chat.Send(f.ctx, doc.ID, "Abschnitt 1.1: bitte kürzer formulieren", nil)
	require.NoError(t, err)
	assert.True(t, res.RequiresConfirmation)
	assert.Equal(t, map[string]string{"1.1": "Überarbeiteter Text"}, res.SuggestedContent)

	history, err := f.chat.History(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 2)
	assert.Equal(t, map[string]string{"1.1": "Überarbeiteter Text"}, history.PendingSuggestions)

	_, err = f.chat.Confirm(f.ctx, doc.ID, "1.1", "Überarbeiteter Text")
	require.NoError(t, err)

	history, err = f.chat.History(f.ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, history.PendingSuggestions)

	stored, err := f.docs.Get(f.ctx, doc.ID)
	require.NoError(t, err)
	for _, sec := range sectionsOf(t, stored) {
		if sec.ID == "1.1" {
			assert.Equal(t, "Überarbeiteter Text", sec.Content)
		}
	}
}

func TestStyleRegenerateReplacesCachedGuide(t *testing.T) {
	f := newFixture(t)

	view, err := f.style.Current(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, styleguide.DefaultGuide, view.Guide)
	assert.Nil(t, view.Profile)

	f.llm.Handler = func(openai.Request) (string, error) {
		return `{"tone_characteristics":["sachlich"],"writing_style_rules":["kurze Sätze"]}`, nil
	}
	view, err = f.style.Regenerate(f.ctx, []string{"Alter Antrag eins", " ", "Alter Antrag zwei"})
	require.NoError(t, err)
	assert.Equal(t, 2, view.SourceCount)
	assert.NotEmpty(t, view.CombinedHash)

	current, err := f.style.Current(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, view.CombinedHash, current.CombinedHash)
	assert.Contains(t, current.Guide, "sachlich")

	_, err = f.style.Regenerate(f.ctx, []string{" "})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestTemplateServiceListsSystemTemplates(t *testing.T) {
	f := newFixture(t)
	list := f.templates.ListSystem()
	require.NotEmpty(t, list)
	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, documents.DefaultTemplateName)

	_, err := f.templates.GetSystem("does-not-exist")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	_, err = f.templates.CreateUserTemplate(f.ctx, "kaputt", "", json.RawMessage(`{"sections":[{"title":"ohne id"}]}`))
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)

	_, err = f.templates.ListUserTemplates(context.Background())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}
