package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/docgentest"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

func TestClassify(t *testing.T) {
	cases := map[string]Kind{
		"improve this":                   KindVague,
		"expand the section":             KindVague,
		"bitte verbessern":               KindVague,
		"make it shorter":                KindSpecific,
		"more technical please":          KindSpecific,
		"add more detail about the team": KindSpecific,
		"Kürzer und prägnanter":          KindSpecific,
		"rewrite to be more formal":      KindRewrite,
		"komplett neu schreiben, kürzer": KindRewrite,
		"update the milestone list":      KindVague,
		"prefix it with the background":  KindVague,
		"expand unless it gets too long": KindVague,
		"improve it, the tone is off":    KindSpecific,
		"Stichpunkte ergänzen":           KindSpecific,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), in)
	}
}

func newEditor(llm *docgentest.LLM) *Editor {
	return New(logger.NewNop(), llm, nil, Config{Timeout: time.Second})
}

func TestEditSectionSingleCallAndCleanup(t *testing.T) {
	llm := docgentest.NewLLM(docgentest.Texts("```\n## 2.1 Team\nDas Team besteht aus fünf Personen.\n```")...)
	ed := newEditor(llm)

	out, err := ed.EditSection(context.Background(), Request{
		SectionID:      "2.1",
		Title:          "Team",
		CurrentContent: "Das Team.",
		Instruction:    "add more detail",
	})
	require.NoError(t, err)
	assert.Equal(t, "Das Team besteht aus fünf Personen.", out)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].JSONMode)
	assert.True(t, calls[0].NoRetry)
	assert.Contains(t, calls[0].System, "nicht ihr Autor")
	assert.Contains(t, calls[0].User, "Das Team.")
	assert.Contains(t, calls[0].User, "(specific)")
}

func TestEditSectionEmptyCurrentContent(t *testing.T) {
	llm := docgentest.NewLLM(docgentest.Texts("Entwurf")...)
	out, err := newEditor(llm).EditSection(context.Background(), Request{SectionID: "2", Title: "Team", Instruction: "add more detail about the team"})
	require.NoError(t, err)
	assert.Equal(t, "Entwurf", out)
	assert.Contains(t, llm.Calls()[0].User, "noch leer")
}

func TestEditSectionFailsWithoutRetry(t *testing.T) {
	llm := docgentest.NewLLM(docgentest.Reply{Err: errors.New("timeout")}, docgentest.Reply{Text: "never"})
	_, err := newEditor(llm).EditSection(context.Background(), Request{SectionID: "1", Instruction: "improve"})
	require.Error(t, err)
	assert.True(t, aggregates.IsCode(err, aggregates.CodeGenerationFailed))
	assert.Equal(t, 1, llm.CallCount())
}

func TestEditSectionRejectsInvalidRequests(t *testing.T) {
	llm := docgentest.NewLLM()
	ed := newEditor(llm)

	_, err := ed.EditSection(context.Background(), Request{SectionID: "3.2", Type: documents.SectionTypeMilestoneTable, Instruction: "x y z"})
	assert.True(t, aggregates.IsCode(err, aggregates.CodeValidation))
	_, err = ed.EditSection(context.Background(), Request{SectionID: "1", Instruction: "  "})
	assert.True(t, aggregates.IsCode(err, aggregates.CodeValidation))
	assert.Zero(t, llm.CallCount())
}

func TestEditSectionBlankResult(t *testing.T) {
	llm := docgentest.NewLLM(docgentest.Texts("```\n```")...)
	_, err := newEditor(llm).EditSection(context.Background(), Request{SectionID: "1", Instruction: "improve"})
	assert.True(t, aggregates.IsCode(err, aggregates.CodeGenerationFailed))
}
