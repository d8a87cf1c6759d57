package instructions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

func TestValidateEmptyListIsOK(t *testing.T) {
	assert.NoError(t, Validate(nil, validIDs))
}

func TestValidateNamesUnknownIDs(t *testing.T) {
	err := Validate([]documents.EditChange{
		{SectionID: "2.1", Instruction: "shorter"},
		{SectionID: "9.9", Instruction: "longer"},
	}, validIDs)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	assert.Contains(t, domainagg.MessageOf(err), "9.9")
	assert.NotContains(t, domainagg.MessageOf(err), "2.1 not found")
}

func TestValidateRejectsEmptyInstruction(t *testing.T) {
	err := Validate([]documents.EditChange{{SectionID: "2,1", Instruction: " "}}, validIDs)
	require.Error(t, err)
	assert.Contains(t, domainagg.MessageOf(err), "2,1")
}

func TestIsQuestion(t *testing.T) {
	yes := []string{
		"What does section 2.1 say?",
		"Warum ist der Abschnitt so kurz",
		"Can you explain the innovation part",
		"is this formal enough",
		"Wie lang sollte 2.1 sein",
	}
	no := []string{
		"2.1: make it more concise",
		"make it better",
		"Bitte Abschnitt 3 erweitern",
		"Wichtig: 2.1 kürzen",
		"",
	}
	for _, m := range yes {
		assert.True(t, IsQuestion(m), m)
	}
	for _, m := range no {
		assert.False(t, IsQuestion(m), m)
	}
}

func TestNeedsClarification(t *testing.T) {
	t.Run("valid change needs nothing", func(t *testing.T) {
		q, ok := NeedsClarification("2.1: more detail", validIDs, nil, nil)
		assert.False(t, ok)
		assert.Empty(t, q)
	})
	t.Run("vague request names last edited section", func(t *testing.T) {
		q, ok := NeedsClarification("make it better", []string{"1.1", "1.2"}, nil, []string{"1.1"})
		assert.True(t, ok)
		assert.Contains(t, q, "1.1")
	})
	t.Run("unknown id is named", func(t *testing.T) {
		q, ok := NeedsClarification("9.9: add something", validIDs, nil, nil)
		assert.True(t, ok)
		assert.Contains(t, q, "9.9")
	})
	t.Run("valid id without instruction", func(t *testing.T) {
		q, ok := NeedsClarification("2.1", validIDs, nil, nil)
		assert.True(t, ok)
		assert.Contains(t, q, "section 2.1")
	})
	t.Run("title reference is actionable", func(t *testing.T) {
		q, ok := NeedsClarification("Innovationsgehalt: stärker betonen", validIDs, sections(), nil)
		assert.False(t, ok)
		assert.Empty(t, q)
	})
	t.Run("no action and no id", func(t *testing.T) {
		q, ok := NeedsClarification("hello", validIDs, nil, nil)
		assert.True(t, ok)
		assert.NotEmpty(t, q)
	})
}
