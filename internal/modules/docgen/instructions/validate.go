package instructions

import (
	"fmt"
	"strings"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

// Validate checks that every change targets a known section and carries an instruction.
// The returned error message is meant to be shown to the user as is.
func Validate(changes []documents.EditChange, validIDs []string) error {
	const op = "instructions.Validate"
	if len(changes) == 0 {
		return nil
	}
	valid := sectionid.NewIndex(validIDs)
	var unknown []string
	for _, c := range changes {
		if _, ok := valid.Lookup(c.SectionID); !ok {
			unknown = append(unknown, sectionid.Normalize(c.SectionID))
		}
	}
	if len(unknown) > 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, unknownSectionsMessage(unknown, validIDs), nil)
	}
	for _, c := range changes {
		if len([]rune(strings.TrimSpace(c.Instruction))) < minInstructionLen {
			msg := fmt.Sprintf("No instruction was given for section %s. Please describe the change.", c.SectionID)
			return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
		}
	}
	return nil
}

func unknownSectionsMessage(unknown, validIDs []string) string {
	label := "Section"
	if len(unknown) > 1 {
		label = "Sections"
	}
	return fmt.Sprintf("%s %s not found. Available sections: %s",
		label, strings.Join(unknown, ", "), strings.Join(validIDs, ", "))
}
