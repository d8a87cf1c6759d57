package headings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

func sections() []documents.Section {
	return []documents.Section{
		{ID: "1", Title: "Einleitung"},
		{ID: "2.1", Title: "Team"},
	}
}

func TestCheckUnlockedAllowsAnything(t *testing.T) {
	assert.NoError(t, Check(sections(), []documents.Section{{ID: "9", Title: "Neu"}}, false, Policy{}))
}

func TestCheckLockedContentOnly(t *testing.T) {
	updated := sections()
	updated[0].Content = "new body"
	assert.NoError(t, Check(sections(), updated, true, Policy{}))
}

func TestCheckLockedRename(t *testing.T) {
	updated := sections()
	updated[1].Title = "Mannschaft"
	err := Check(sections(), updated, true, Policy{})
	require.Error(t, err)
	assert.True(t, aggregates.IsCode(err, aggregates.CodeInvariantViolation))
	assert.Contains(t, err.Error(), "cannot rename sections 2.1")
}

func TestCheckLockedInsertion(t *testing.T) {
	updated := append(sections(), documents.Section{ID: "3", Title: "Plan"})
	err := Check(sections(), updated, true, Policy{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot add sections 3")
}

func TestCheckLockedRemovalFollowsPolicy(t *testing.T) {
	updated := sections()[:1]
	assert.NoError(t, Check(sections(), updated, true, Policy{}))

	err := Check(sections(), updated, true, Policy{BlockRemoval: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot remove sections 2.1")
}

func TestCheckLockedEmptyListCanBeSeeded(t *testing.T) {
	seeded := []documents.Section{{ID: "1", Title: "Intro"}, {ID: "2", Title: "Team"}}
	assert.NoError(t, Check(nil, seeded, true, Policy{BlockRemoval: true}))
}

func TestCheckNormalizesIDs(t *testing.T) {
	updated := []documents.Section{{ID: "1.", Title: "Einleitung"}, {ID: "2,1", Title: "Team"}}
	assert.NoError(t, Check(sections(), updated, true, Policy{}))
}

func TestCheckTransition(t *testing.T) {
	stored := &documents.Document{HeadingsConfirmed: true}
	require.NoError(t, stored.SetContent(documents.Content{Sections: sections()}))

	updated := stored.Clone()
	updated.HeadingsConfirmed = false
	assert.True(t, aggregates.IsCode(CheckTransition(stored, updated, Policy{}), aggregates.CodeInvariantViolation))

	updated = stored.Clone()
	renamed := sections()
	renamed[0].Title = "Intro"
	require.NoError(t, updated.SetContent(documents.Content{Sections: renamed}))
	assert.Error(t, CheckTransition(stored, updated, Policy{}))

	stored.HeadingsConfirmed = false
	assert.NoError(t, CheckTransition(stored, updated, Policy{}))
}

func TestConfirmIsOneWay(t *testing.T) {
	doc := &documents.Document{}
	assert.True(t, Confirm(doc))
	assert.True(t, doc.HeadingsConfirmed)
	assert.False(t, Confirm(doc))
}
