package templates

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateSpec checks a typed template: at least one section, each with id and title,
// and type either absent, "text" or "milestone_table".
func ValidateSpec(name string, spec documents.TemplateSpec) error {
	if err := structValidator().Struct(spec); err != nil {
		return fmt.Errorf("template %q is invalid: %w", name, err)
	}
	seen := map[string]bool{}
	for _, s := range spec.Sections {
		id := sectionid.Normalize(s.ID)
		if seen[id] {
			return fmt.Errorf("template %q has duplicate section id %q", name, id)
		}
		seen[id] = true
	}
	return nil
}

// ParseStructure validates a raw user template document ({"sections": [...]}) shape by shape,
// then decodes and validates it as a TemplateSpec.
func ParseStructure(name string, raw []byte) (documents.TemplateSpec, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return documents.TemplateSpec{}, fmt.Errorf("template %q is not valid JSON: %w", name, err)
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return documents.TemplateSpec{}, fmt.Errorf("template %q has invalid structure: expected an object", name)
	}
	rawSections, ok := obj["sections"]
	if !ok {
		return documents.TemplateSpec{}, fmt.Errorf("template %q is missing 'sections'", name)
	}
	list, ok := rawSections.([]any)
	if !ok {
		return documents.TemplateSpec{}, fmt.Errorf("template %q sections must be a list", name)
	}
	spec := documents.TemplateSpec{Name: name, Sections: make([]documents.TemplateSection, 0, len(list))}
	for i, item := range list {
		sec, ok := item.(map[string]any)
		if !ok {
			return documents.TemplateSpec{}, fmt.Errorf("template %q section %d must be an object", name, i)
		}
		id, idOK := stringField(sec, "id")
		if !idOK {
			return documents.TemplateSpec{}, fmt.Errorf("template %q section %d is missing 'id'", name, i)
		}
		title, titleOK := stringField(sec, "title")
		if !titleOK {
			return documents.TemplateSpec{}, fmt.Errorf("template %q section %d is missing 'title'", name, i)
		}
		typ := ""
		if _, present := sec["type"]; present {
			t, ok := stringField(sec, "type")
			if !ok || (t != documents.SectionTypeText && t != documents.SectionTypeMilestoneTable) {
				return documents.TemplateSpec{}, fmt.Errorf("template %q section %s has invalid type", name, id)
			}
			typ = t
		}
		spec.Sections = append(spec.Sections, documents.TemplateSection{ID: id, Title: title, Type: typ})
	}
	if err := ValidateSpec(name, spec); err != nil {
		return documents.TemplateSpec{}, err
	}
	return spec, nil
}

// stringField accepts strings and JSON numbers, since ids like 1 are often written unquoted.
func stringField(m map[string]any, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v)), true
	default:
		return "", false
	}
}
