package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/batch"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/docgentest"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type fixedTemplate documents.TemplateSpec

func (f fixedTemplate) ForDocument(context.Context, *documents.Document, string) (documents.TemplateSpec, error) {
	return documents.TemplateSpec(f), nil
}

func newPipeline(docs *docgentest.Documents, llm *docgentest.LLM) *Pipeline {
	gen := batch.NewGenerator(logger.NewNop(), llm, nil, batch.Config{MaxRetries: 0, Timeout: time.Second, TargetSize: 4})
	tmpl := fixedTemplate{Name: "mini", Sections: []documents.TemplateSection{
		{ID: "1", Title: "Intro"},
		{ID: "2", Title: "Team"},
		{ID: "3", Title: "Plan", Type: documents.SectionTypeMilestoneTable},
	}}
	return NewPipeline(logger.NewNop(), docs, tmpl, gen)
}

func contents(secs []documents.Section) map[string]string {
	out := map[string]string{}
	for _, s := range secs {
		out[s.ID] = s.Content
	}
	return out
}

func TestGenerateSeedsFromTemplate(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed()
	llm := docgentest.NewLLM(docgentest.Texts(`{"1":"Einleitung","2":"Das Team"}`)...)

	res, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.GeneratedIDs)
	assert.Empty(t, res.FailedBatches)

	stored := docs.Sections(id)
	require.Len(t, stored, 3)
	assert.Equal(t, map[string]string{"1": "Einleitung", "2": "Das Team", "3": ""}, contents(stored))
	assert.Equal(t, documents.SectionTypeMilestoneTable, stored[2].Type)
	assert.Equal(t, 2, docs.SaveCount())

	doc, err := docs.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "mini", doc.TemplateName)
}

func TestGenerateSeedsConfirmedEmptyDocument(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed()
	doc, err := docs.Load(context.Background(), id)
	require.NoError(t, err)
	doc.HeadingsConfirmed = true
	require.NoError(t, docs.Save(context.Background(), doc))

	llm := docgentest.NewLLM(docgentest.Texts(`{"1":"Einleitung","2":"Das Team"}`)...)
	res, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.GeneratedIDs)
	assert.Len(t, docs.Sections(id), 3)
}

func sixSections() []documents.Section {
	return []documents.Section{
		{ID: "1", Title: "A"}, {ID: "2", Title: "B"}, {ID: "3", Title: "C"},
		{ID: "4", Title: "D"}, {ID: "5", Title: "E"}, {ID: "6", Title: "F"},
	}
}

func TestGenerateIsolatesFailedBatches(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed(sixSections()...)
	llm := docgentest.NewLLM(docgentest.Texts(`{"1":"a"}`, `{"5":"e","6":"f"}`)...)

	res, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "6"}, res.GeneratedIDs)
	require.Len(t, res.FailedBatches, 1)
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.FailedBatches[0].SectionIDs)

	got := contents(docs.Sections(id))
	assert.Equal(t, "", got["1"], "failed batch leaves no partial content")
	assert.Equal(t, "e", got["5"])
}

func TestGeneratePreservesProgressWhenLaterBatchFails(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed(sixSections()...)
	llm := docgentest.NewLLM(docgentest.Texts(`{"1":"a","2":"b","3":"c","4":"d"}`, `{}`)...)

	res, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Len(t, res.FailedBatches, 1)
	assert.Equal(t, "d", contents(docs.Sections(id))["4"])
}

func TestGenerateFailsWhenEveryBatchFails(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed(sixSections()...)
	llm := docgentest.NewLLM(docgentest.Texts(`{}`, `{}`)...)

	_, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.Error(t, err)
	assert.True(t, aggregates.IsCode(err, aggregates.CodeGenerationFailed))
	assert.Zero(t, docs.SaveCount())
}

func TestGenerateSkipsFilledSectionsUnlessForced(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed(
		documents.Section{ID: "1", Title: "A", Content: "schon da"},
		documents.Section{ID: "2", Title: "B"},
	)
	llm := docgentest.NewLLM(docgentest.Texts(`{"2":"neu"}`, `{"1":"x","2":"y"}`)...)
	p := newPipeline(docs, llm)

	res, err := p.Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, res.GeneratedIDs)
	assert.Equal(t, "schon da", contents(docs.Sections(id))["1"])

	res, err = p.Generate(context.Background(), Request{DocumentID: id, Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.GeneratedIDs)
	assert.Equal(t, "x", contents(docs.Sections(id))["1"])
}

func TestGenerateNothingToDo(t *testing.T) {
	docs := docgentest.NewDocuments()
	id := docs.Seed(documents.Section{ID: "1", Title: "A", Content: "fertig"})
	llm := docgentest.NewLLM()

	res, err := newPipeline(docs, llm).Generate(context.Background(), Request{DocumentID: id})
	require.NoError(t, err)
	assert.Empty(t, res.GeneratedIDs)
	assert.Zero(t, llm.CallCount())
}
