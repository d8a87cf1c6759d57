// Package headings enforces the heading lock: once a document's headings are
// confirmed, its section titles and structure are frozen and only content may change.
package headings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

// Policy tunes the lock. Removal of sections is allowed unless BlockRemoval is set.
type Policy struct {
	BlockRemoval bool
}

// Check validates a section list change against the lock. A lock on an empty section
// list freezes nothing, so seeding such a document from its template is allowed.
func Check(old, updated []documents.Section, confirmed bool, policy Policy) error {
	if !confirmed || len(old) == 0 {
		return nil
	}
	before := make(map[string]documents.Section, len(old))
	for _, s := range old {
		before[sectionid.Normalize(s.ID)] = s
	}

	var renamed, added []string
	seen := make(map[string]bool, len(updated))
	for _, s := range updated {
		key := sectionid.Normalize(s.ID)
		seen[key] = true
		prev, ok := before[key]
		if !ok {
			added = append(added, s.ID)
			continue
		}
		if strings.TrimSpace(prev.Title) != strings.TrimSpace(s.Title) {
			renamed = append(renamed, s.ID)
		}
	}
	var removed []string
	if policy.BlockRemoval {
		for key, s := range before {
			if !seen[key] {
				removed = append(removed, s.ID)
			}
		}
	}
	if len(renamed) == 0 && len(added) == 0 && len(removed) == 0 {
		return nil
	}

	var parts []string
	if len(renamed) > 0 {
		parts = append(parts, "cannot rename sections "+joinIDs(renamed))
	}
	if len(added) > 0 {
		parts = append(parts, "cannot add sections "+joinIDs(added))
	}
	if len(removed) > 0 {
		parts = append(parts, "cannot remove sections "+joinIDs(removed))
	}
	msg := fmt.Sprintf("headings are confirmed: %s", strings.Join(parts, "; "))
	return aggregates.NewError(aggregates.CodeInvariantViolation, "headings.Check", msg, nil)
}

// CheckTransition validates a whole-document update against the stored state: the lock
// cannot be released and, when it was set before, the section list must pass Check.
func CheckTransition(stored, updated *documents.Document, policy Policy) error {
	if stored == nil || updated == nil || !stored.HeadingsConfirmed {
		return nil
	}
	if !updated.HeadingsConfirmed {
		return aggregates.NewError(aggregates.CodeInvariantViolation, "headings.CheckTransition", "confirmed headings cannot be unlocked", nil)
	}
	before, err := stored.Content()
	if err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, "headings.CheckTransition", err)
	}
	after, err := updated.Content()
	if err != nil {
		return aggregates.Wrap(aggregates.CodeValidation, "headings.CheckTransition", err)
	}
	return Check(before.Sections, after.Sections, true, policy)
}

// Confirm locks the headings. It reports whether the flag changed.
func Confirm(doc *documents.Document) bool {
	if doc == nil || doc.HeadingsConfirmed {
		return false
	}
	doc.HeadingsConfirmed = true
	return true
}

func joinIDs(ids []string) string {
	sort.SliceStable(ids, func(i, j int) bool { return sectionid.Compare(ids[i], ids[j]) < 0 })
	return strings.Join(ids, ", ")
}
