package documents

import "strings"

const (
	SectionTypeText           = "text"
	SectionTypeMilestoneTable = "milestone_table"
)

// Section is one titled unit of a document. ID is a dotted hierarchical number ("2.1").
// Milestone tables carry structured content and are never touched by text generation or editing.
type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

func (s Section) IsMilestoneTable() bool {
	return strings.TrimSpace(s.Type) == SectionTypeMilestoneTable
}

// IsText treats an absent type as text.
func (s Section) IsText() bool {
	t := strings.TrimSpace(s.Type)
	return t == "" || t == SectionTypeText
}

// Content is the persisted shape of content_json.
type Content struct {
	Sections []Section `json:"sections"`
}

// IDs returns section ids in document order.
func (c Content) IDs() []string {
	out := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		out = append(out, s.ID)
	}
	return out
}

// Clone returns a deep copy; callers mutate the copy and save it explicitly.
func (c Content) Clone() Content {
	out := Content{Sections: make([]Section, len(c.Sections))}
	copy(out.Sections, c.Sections)
	return out
}

// EditChange is one parsed edit request: which section, and what to do with it.
type EditChange struct {
	SectionID   string `json:"section_id"`
	Instruction string `json:"instruction"`
}
