// Package batch generates the initial content of document sections, a few sections
// per model call, under a strict JSON contract.
package batch

import "github.com/yungbote/vorhaben-backend/internal/domain/documents"

// DefaultTargetSize is the size of the first batch.
const DefaultTargetSize = 4

// SplitIntoBatches groups text sections in document order. Milestone tables are
// excluded. The first batch holds target sections, after which sizes alternate
// between target+1 and target-1 (4, 5, 3, 5, 3 for target 4).
func SplitIntoBatches(sections []documents.Section, target int) [][]documents.Section {
	if target <= 0 {
		target = DefaultTargetSize
	}
	eligible := make([]documents.Section, 0, len(sections))
	for _, s := range sections {
		if s.IsMilestoneTable() {
			continue
		}
		eligible = append(eligible, s)
	}

	var out [][]documents.Section
	size := target
	for i := 0; i < len(eligible); {
		end := i + size
		if end > len(eligible) {
			end = len(eligible)
		}
		out = append(out, eligible[i:end:end])
		i = end
		size = nextSize(size, target)
	}
	return out
}

func nextSize(cur, target int) int {
	small := target - 1
	if small < 1 {
		small = 1
	}
	if cur == target+1 {
		return small
	}
	return target + 1
}
