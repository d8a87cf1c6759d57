package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TemplateSourceSystem = "system"
	TemplateSourceUser   = "user"
)

// DefaultTemplateName is used when a document names no template at all.
const DefaultTemplateName = "wtt_v1"

type TemplateSection struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Title string `json:"title" yaml:"title" validate:"required"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=text milestone_table"`
}

// TemplateSpec is an ordered section skeleton.
type TemplateSpec struct {
	Name        string            `json:"name,omitempty" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string            `json:"source,omitempty" yaml:"-"`
	Sections    []TemplateSection `json:"sections" yaml:"sections" validate:"required,min=1,dive"`
}

// Skeleton turns the template into empty document sections.
func (t TemplateSpec) Skeleton() Content {
	out := Content{Sections: make([]Section, 0, len(t.Sections))}
	for _, s := range t.Sections {
		typ := s.Type
		if typ == "" {
			typ = SectionTypeText
		}
		out.Sections = append(out.Sections, Section{ID: s.ID, Title: s.Title, Type: typ})
	}
	return out
}

// UserTemplate is an owner-scoped custom template. Structure holds the raw
// {"sections": [...]} document and is validated on every resolution.
type UserTemplate struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerEmail  string         `gorm:"column:owner_email;not null;index" json:"-"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description;not null;default:''" json:"description,omitempty"`
	Structure   datatypes.JSON `gorm:"column:structure;not null" json:"structure"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserTemplate) TableName() string { return "user_template" }

func (t *UserTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
