package instructions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

var validIDs = []string{"1", "1.1", "2", "2.1", "2.2", "3"}

func sections() []documents.Section {
	return []documents.Section{
		{ID: "1", Title: "Einleitung"},
		{ID: "1.1", Title: "Ausgangssituation"},
		{ID: "2", Title: "Stand der Technik"},
		{ID: "2.1", Title: "Bisherige Lösungsansätze"},
		{ID: "2.2", Title: "Innovationsgehalt"},
		{ID: "3", Title: "Unternehmen und Team"},
	}
}

func TestParseKeywordReference(t *testing.T) {
	got := Parse("Section 2.1: make it more concise", []string{"2.1", "2.2"}, nil)
	assert.Equal(t, []documents.EditChange{{SectionID: "2.1", Instruction: "make it more concise"}}, got)
}

func TestParseMultipleColonReferencesInOrder(t *testing.T) {
	got := Parse("2.1: innovative. 2.2: more technical", []string{"2.1", "2.2"}, nil)
	assert.Equal(t, []documents.EditChange{
		{SectionID: "2.1", Instruction: "innovative"},
		{SectionID: "2.2", Instruction: "more technical"},
	}, got)
}

func TestParseNormalizesCommaIDs(t *testing.T) {
	got := Parse("Abschnitt 2,1 - bitte kürzer fassen", validIDs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "2.1", got[0].SectionID)
	assert.Equal(t, "bitte kürzer fassen", got[0].Instruction)
}

func TestParseTitleAnchored(t *testing.T) {
	got := Parse("Stand der Technik: mehr Quellen nennen", validIDs, sections())
	assert.Equal(t, []documents.EditChange{{SectionID: "2", Instruction: "mehr Quellen nennen"}}, got)
}

func TestParseTitleAnchoredMultipleLines(t *testing.T) {
	msg := "Innovationsgehalt: stärker betonen\nUnternehmen und Team - Rollen ergänzen"
	got := Parse(msg, validIDs, sections())
	assert.Equal(t, []documents.EditChange{
		{SectionID: "2.2", Instruction: "stärker betonen"},
		{SectionID: "3", Instruction: "Rollen ergänzen"},
	}, got)
}

func TestParseMixedTitleAndIDReferences(t *testing.T) {
	secs := []documents.Section{
		{ID: "1", Title: "Intro"},
		{ID: "2", Title: "Team"},
		{ID: "2.1", Title: "Stand der Technik"},
	}
	ids := []string{"1", "2", "2.1"}

	cases := []struct {
		name string
		msg  string
		want []documents.EditChange
	}{
		{
			name: "id before title",
			msg:  "2.1: make it more concise. Team: add more detail about the founders",
			want: []documents.EditChange{
				{SectionID: "2.1", Instruction: "make it more concise"},
				{SectionID: "2", Instruction: "add more detail about the founders"},
			},
		},
		{
			name: "title before id",
			msg:  "Team: add founders\n1: shorter intro please",
			want: []documents.EditChange{
				{SectionID: "2", Instruction: "add founders"},
				{SectionID: "1", Instruction: "shorter intro please"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.msg, ids, secs))
		})
	}
}

func TestParseActionVerbInsideInstructionIsNotAReference(t *testing.T) {
	ids := []string{"1", "2", "2.1"}
	got := Parse("1: change 2 sentences to be shorter", ids, nil)
	assert.Equal(t, []documents.EditChange{{SectionID: "1", Instruction: "change 2 sentences to be shorter"}}, got)

	got = Parse("1: shorter please. Rewrite 2 to be more formal", ids, nil)
	assert.Equal(t, []documents.EditChange{
		{SectionID: "1", Instruction: "shorter please"},
		{SectionID: "2", Instruction: "rewrite to be more formal"},
	}, got)
}

func TestParseActionVerbKeepsVerb(t *testing.T) {
	got := Parse("rewrite 2.1 to be more formal", validIDs, nil)
	assert.Equal(t, []documents.EditChange{{SectionID: "2.1", Instruction: "rewrite to be more formal"}}, got)
}

func TestParseStandaloneAfterPunctuation(t *testing.T) {
	got := Parse("1.1 needs numbers. 3 mention the founders", validIDs, nil)
	assert.Equal(t, []documents.EditChange{
		{SectionID: "1.1", Instruction: "needs numbers"},
		{SectionID: "3", Instruction: "mention the founders"},
	}, got)
}

func TestParseRejectsPartialIDs(t *testing.T) {
	got := Parse("12.1: shorten this", []string{"2.1"}, nil)
	for _, c := range got {
		assert.NotEqual(t, "2.1", c.SectionID)
	}
}

func TestParseFirstOccurrenceWins(t *testing.T) {
	got := Parse("2.1: shorter\n2.1: longer", validIDs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "2.1", got[0].SectionID)
	assert.Contains(t, got[0].Instruction, "shorter")
}

func TestParseDropsBareReferences(t *testing.T) {
	assert.Empty(t, Parse("2.1: ok", validIDs, nil))
	assert.Empty(t, Parse("Section 2.1", validIDs, nil))
}

func TestParseWithoutDigitsOrTitlesIsEmpty(t *testing.T) {
	for _, msg := range []string{"make it better", "Bitte alles überarbeiten", "", "hello there: general remark"} {
		assert.Empty(t, Parse(msg, validIDs, sections()), msg)
	}
}

func TestParseExplicitUnknownIDIsReturnedForValidation(t *testing.T) {
	got := Parse("9.9: add something", validIDs, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "9.9", got[0].SectionID)
	assert.Error(t, Validate(got, validIDs))
}

func TestParseIgnoresRangesAndTimes(t *testing.T) {
	assert.Empty(t, Parse("use 2-3 sentences at 10:30", validIDs, nil))
}

func TestParseStrict(t *testing.T) {
	msg := "2.1: mehr Zahlen\nSonstiges\nAbschnitt 3 - Team vorstellen\n9: unbekannt"
	got := ParseStrict(msg, validIDs)
	assert.Equal(t, []documents.EditChange{
		{SectionID: "2.1", Instruction: "mehr Zahlen"},
		{SectionID: "3", Instruction: "Team vorstellen"},
	}, got)
}
