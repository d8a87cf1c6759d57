// Package instructions turns free-text chat messages into per-section edit changes.
package instructions

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

const minInstructionLen = 3

const idPattern = `\d+(?:[.,]\d+)*`

var (
	titleAnchor = regexp.MustCompile(`(?:^|[\n.;!?]\s*)(\p{L}[\p{L}\p{N} &/()'’-]{2,80}?)\s*(?::|\s[-–]\s)`)

	keywordID    = regexp.MustCompile(`(?i)\b(?:section|abschnitt|sektion|kapitel|punkt)\s*(` + idPattern + `)\s*(?::|[-–])?`)
	colonID      = regexp.MustCompile(`(` + idPattern + `)\s*:`)
	dashID       = regexp.MustCompile(`(` + idPattern + `)\s*[-–]`)
	actionID     = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(update|rewrite|change|modify|edit|improve|expand|extend|shorten|revise|rephrase|refine|überarbeite|ueberarbeite|ändere|aendere|bearbeite|verbessere|erweitere|ergänze|ergaenze|kürze|kuerze|formuliere|schreibe)\s+(?:(?:the\s+|den\s+|die\s+)?(?:section|abschnitt|kapitel)\s*)?(` + idPattern + `)\s*(?::|[-–])?`)
	standaloneID = regexp.MustCompile(`(?m)(?:^\s*|[.;!?,]\s+)(` + idPattern + `)`)

	bareReference       = regexp.MustCompile(`(?i)^(?:(?:section|abschnitt|sektion|kapitel|punkt)\s*)?` + idPattern + `$`)
	trailingConjunction = regexp.MustCompile(`(?i)\s+(?:and|also|then|und|sowie|dann|außerdem|ausserdem)$`)
)

// Parser is the enhanced parser. Title-anchored and id references are collected into one
// ordered match list, so every instruction ends where the next reference begins.
type Parser struct {
	TitleThreshold float64
}

func NewParser(titleThreshold float64) *Parser {
	if titleThreshold <= 0 {
		titleThreshold = sectionid.DefaultTitleThreshold
	}
	return &Parser{TitleThreshold: titleThreshold}
}

// Parse runs the enhanced parser with the default title threshold.
func Parse(message string, validIDs []string, sections []documents.Section) []documents.EditChange {
	return NewParser(sectionid.DefaultTitleThreshold).Parse(message, validIDs, sections)
}

type match struct {
	id     string
	start  int
	end    int
	verb   string
	action bool
}

func (p *Parser) Parse(message string, validIDs []string, sections []documents.Section) []documents.EditChange {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	anchors := append(p.byTitle(message, sections), byID(message, sectionid.NewIndex(validIDs))...)
	for _, m := range byAction(message, sectionid.NewIndex(validIDs)) {
		if !insideInstruction(message, m, anchors) {
			anchors = append(anchors, m)
		}
	}
	return slice(message, dedupe(dropOverlaps(anchors)))
}

func (p *Parser) byTitle(message string, sections []documents.Section) []match {
	if len(sections) == 0 {
		return nil
	}
	var matches []match
	for _, loc := range titleAnchor.FindAllStringSubmatchIndex(message, -1) {
		cand := strings.TrimSpace(message[loc[2]:loc[3]])
		if cand == "" || bareReference.MatchString(cand) {
			continue
		}
		id, ok := sectionid.FindByTitle(cand, sections, p.TitleThreshold)
		if !ok {
			continue
		}
		matches = append(matches, match{id: id, start: loc[2], end: loc[1]})
	}
	return matches
}

func byID(message string, valid sectionid.Index) []match {
	var matches []match
	for _, loc := range keywordID.FindAllStringSubmatchIndex(message, -1) {
		if partialID(message, loc[2]) {
			continue
		}
		matches = append(matches, match{id: canonical(message[loc[2]:loc[3]], valid), start: loc[0], end: loc[1]})
	}
	for _, loc := range colonID.FindAllStringSubmatchIndex(message, -1) {
		if partialID(message, loc[2]) || followedByDigit(message, loc[1]) {
			continue
		}
		matches = append(matches, match{id: canonical(message[loc[2]:loc[3]], valid), start: loc[0], end: loc[1]})
	}
	for _, loc := range dashID.FindAllStringSubmatchIndex(message, -1) {
		if partialID(message, loc[2]) || followedByDigit(message, loc[1]) {
			continue
		}
		id, ok := valid.Lookup(message[loc[2]:loc[3]])
		if !ok {
			continue
		}
		matches = append(matches, match{id: id, start: loc[0], end: loc[1]})
	}
	for _, loc := range standaloneID.FindAllStringSubmatchIndex(message, -1) {
		if partialID(message, loc[2]) || !followedByText(message, loc[3]) {
			continue
		}
		id, ok := valid.Lookup(message[loc[2]:loc[3]])
		if !ok {
			continue
		}
		matches = append(matches, match{id: id, start: loc[2], end: loc[3]})
	}
	return matches
}

// byAction finds "<verb> <id>" references. The verb becomes part of the instruction.
func byAction(message string, valid sectionid.Index) []match {
	var matches []match
	for _, loc := range actionID.FindAllStringSubmatchIndex(message, -1) {
		if partialID(message, loc[4]) {
			continue
		}
		matches = append(matches, match{
			id:     canonical(message[loc[4]:loc[5]], valid),
			start:  loc[2],
			end:    loc[1],
			verb:   strings.ToLower(message[loc[2]:loc[3]]),
			action: true,
		})
	}
	return matches
}

// insideInstruction reports whether an action reference sits in the instruction of an
// earlier anchor with no clause boundary in between ("1: change 2 sentences").
func insideInstruction(message string, m match, anchors []match) bool {
	nearest := -1
	for _, a := range anchors {
		if a.end <= m.start && a.end > nearest {
			nearest = a.end
		}
	}
	if nearest < 0 {
		return false
	}
	return !strings.ContainsAny(message[nearest:m.start], ".;!?\n")
}

// dropOverlaps removes matches that start inside an earlier, longer anchor ("2.1:" within
// "Abschnitt 2.1:").
func dropOverlaps(matches []match) []match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})
	out := make([]match, 0, len(matches))
	for _, m := range matches {
		if n := len(out); n > 0 && m.start < out[n-1].end {
			continue
		}
		out = append(out, m)
	}
	return out
}

// dedupe keeps the earliest match per id and orders the result by position.
func dedupe(matches []match) []match {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })
	seen := map[string]bool{}
	out := make([]match, 0, len(matches))
	for _, m := range matches {
		if m.id == "" || seen[m.id] {
			continue
		}
		seen[m.id] = true
		out = append(out, m)
	}
	return out
}

func slice(message string, matches []match) []documents.EditChange {
	var out []documents.EditChange
	for i, m := range matches {
		stop := len(message)
		if i+1 < len(matches) {
			stop = matches[i+1].start
		}
		text := ""
		if stop > m.end {
			text = message[m.end:stop]
		}
		instr := cleanInstruction(text)
		if m.verb != "" {
			instr = strings.TrimSpace(m.verb + " " + instr)
		}
		if !usableInstruction(instr) {
			continue
		}
		out = append(out, documents.EditChange{SectionID: m.id, Instruction: instr})
	}
	return out
}

func cleanInstruction(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), ":-–—)>,; \t\r\n")
	for {
		prev := s
		s = strings.TrimRight(s, " \t\r\n.,;:-–—")
		s = trailingConjunction.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}
	return strings.TrimSpace(s)
}

func usableInstruction(s string) bool {
	if utf8.RuneCountInString(s) < minInstructionLen {
		return false
	}
	return !bareReference.MatchString(s)
}

func canonical(raw string, valid sectionid.Index) string {
	if id, ok := valid.Lookup(raw); ok {
		return id
	}
	return sectionid.Normalize(raw)
}

// partialID rejects ids that start inside a longer number ("12.4" must not yield "2.4").
func partialID(s string, start int) bool {
	if start <= 0 {
		return false
	}
	c := s[start-1]
	if isDigit(c) {
		return true
	}
	return (c == '.' || c == ',') && start > 1 && isDigit(s[start-2])
}

func followedByDigit(s string, pos int) bool {
	rest := strings.TrimLeft(s[pos:], " ")
	return rest != "" && isDigit(rest[0])
}

// followedByText requires a word after a bare id so stray numbers are not treated as references.
func followedByText(s string, pos int) bool {
	rest := strings.TrimLeft(s[pos:], " \t:)-–")
	letters := 0
	for _, r := range rest {
		if !unicode.IsLetter(r) {
			break
		}
		letters++
	}
	return letters >= minInstructionLen
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
