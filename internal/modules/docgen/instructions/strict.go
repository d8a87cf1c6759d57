package instructions

import (
	"regexp"
	"strings"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

var strictLine = regexp.MustCompile(`(?im)^\s*(?:(?:section|abschnitt|kapitel)\s*)?(` + idPattern + `)\s*(?::|[-–])\s*(.+?)\s*$`)

// ParseStrict only accepts line-anchored "<id>: text" forms for known ids.
func ParseStrict(message string, validIDs []string) []documents.EditChange {
	valid := sectionid.NewIndex(validIDs)
	seen := map[string]bool{}
	var out []documents.EditChange
	for _, m := range strictLine.FindAllStringSubmatch(message, -1) {
		id, ok := valid.Lookup(m[1])
		if !ok || seen[id] {
			continue
		}
		instr := cleanInstruction(m[2])
		if !usableInstruction(instr) {
			continue
		}
		seen[id] = true
		out = append(out, documents.EditChange{SectionID: id, Instruction: strings.TrimSpace(instr)})
	}
	return out
}
