package sectionid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

func testSections() []documents.Section {
	return []documents.Section{
		{ID: "1", Title: "1. Einleitung"},
		{ID: "2.1", Title: "Stand der Technik"},
		{ID: "2.2", Title: "Innovationsgehalt des Vorhabens"},
		{ID: "3", Title: "Unternehmen und Team"},
	}
}

func TestFindByTitleExactIgnoresNumberingAndCase(t *testing.T) {
	id, ok := FindByTitle("einleitung", testSections(), DefaultTitleThreshold)
	assert.True(t, ok)
	assert.Equal(t, "1", id)

	id, ok = FindByTitle("2.1 STAND DER TECHNIK", testSections(), DefaultTitleThreshold)
	assert.True(t, ok)
	assert.Equal(t, "2.1", id)
}

func TestFindByTitleContainment(t *testing.T) {
	id, ok := FindByTitle("Team", testSections(), DefaultTitleThreshold)
	assert.True(t, ok)
	assert.Equal(t, "3", id)
}

func TestFindByTitleFuzzy(t *testing.T) {
	id, ok := FindByTitle("Stand der Technick", testSections(), DefaultTitleThreshold)
	assert.True(t, ok)
	assert.Equal(t, "2.1", id)
}

func TestFindByTitleNoMatch(t *testing.T) {
	_, ok := FindByTitle("Finanzierungsplan", testSections(), DefaultTitleThreshold)
	assert.False(t, ok)
	_, ok = FindByTitle("   ", testSections(), DefaultTitleThreshold)
	assert.False(t, ok)
}

func TestFindByTitleTieBreaksByLowestID(t *testing.T) {
	sections := []documents.Section{
		{ID: "4.2", Title: "Verwertung"},
		{ID: "4.1", Title: "Verwertung"},
	}
	id, ok := FindByTitle("verwertung", sections, DefaultTitleThreshold)
	assert.True(t, ok)
	assert.Equal(t, "4.1", id)
}
