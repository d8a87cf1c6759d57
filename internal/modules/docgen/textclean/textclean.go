// Package textclean tidies raw model output before it is stored as section content.
package textclean

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// StripCodeFences returns the body of a response that is a single fenced code block
// (```json ... ```). Anything else is returned trimmed and unchanged.
func StripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") && !strings.HasPrefix(trimmed, "~~~") {
		return trimmed
	}
	src := []byte(trimmed)
	doc := md.Parser().Parse(text.NewReader(src))
	first := doc.FirstChild()
	if first == nil || first.Kind() != ast.KindFencedCodeBlock || first.NextSibling() != nil {
		return trimmed
	}
	var buf bytes.Buffer
	lines := first.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String())
}

// ExtractJSONObject strips fences and returns the outermost {...} span, or "" when
// the text holds no object.
func ExtractJSONObject(raw string) string {
	s := StripCodeFences(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// StripLeadingTitle drops a first line that merely repeats the section heading,
// e.g. "## 2.1 Marktanalyse" or "**Marktanalyse**".
func StripLeadingTitle(content, id, title string) string {
	content = strings.TrimSpace(content)
	first, rest, _ := strings.Cut(content, "\n")
	line := headingText(first)
	if line == "" {
		return content
	}
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	candidates := []string{title}
	if id != "" {
		candidates = append(candidates, id+" "+title, id+". "+title, id+": "+title)
	}
	for _, c := range candidates {
		if c != "" && strings.EqualFold(line, c) {
			return strings.TrimSpace(rest)
		}
	}
	return content
}

// headingText unwraps markdown heading and emphasis markers from a single line.
func headingText(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimSpace(s)
	for _, wrap := range []string{"**", "__", "*", "_"} {
		if len(s) > 2*len(wrap) && strings.HasPrefix(s, wrap) && strings.HasSuffix(s, wrap) {
			s = strings.TrimSpace(s[len(wrap) : len(s)-len(wrap)])
		}
	}
	return strings.TrimSuffix(s, ":")
}
