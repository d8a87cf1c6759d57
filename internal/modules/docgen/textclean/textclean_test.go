package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello  ", "hello"},
		{"json fence", "```json\n{\"1\": \"a\"}\n```", "{\"1\": \"a\"}"},
		{"bare fence", "```\nText\nmore\n```\n", "Text\nmore"},
		{"fence then prose", "```\na\n```\nafter", "```\na\n```\nafter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":"b"}`, ExtractJSONObject("Here you go: {\"a\":\"b\"} thanks"))
	assert.Equal(t, `{"a":"b"}`, ExtractJSONObject("```json\n{\"a\":\"b\"}\n```"))
	assert.Equal(t, "", ExtractJSONObject("no object"))
}

func TestStripLeadingTitle(t *testing.T) {
	assert.Equal(t, "Body", StripLeadingTitle("## 2.1 Marktanalyse\nBody", "2.1", "Marktanalyse"))
	assert.Equal(t, "Body", StripLeadingTitle("**Marktanalyse**\n\nBody", "2.1", "Marktanalyse"))
	assert.Equal(t, "Marktanalyse zeigt Wachstum.", StripLeadingTitle("Marktanalyse zeigt Wachstum.", "2.1", "Marktanalyse"))
}
