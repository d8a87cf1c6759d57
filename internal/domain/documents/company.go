package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Company is the applicant. Profile is the structured, preferred grounding source;
// EnrichmentText is raw preprocessed website/meeting text used only as a secondary source.
type Company struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerEmail     string         `gorm:"column:owner_email;not null;default:'';index" json:"-"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Website        string         `gorm:"column:website;not null;default:''" json:"website,omitempty"`
	Profile        datatypes.JSON `gorm:"column:profile" json:"profile,omitempty"`
	EnrichmentText string         `gorm:"column:enrichment_text;type:text;not null;default:''" json:"-"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Company) TableName() string { return "company" }

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FundingProgram supplies the rules context (preprocessed guideline summary) and an optional default template.
type FundingProgram struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	RulesSummary string    `gorm:"column:rules_summary;type:text;not null;default:''" json:"rules_summary,omitempty"`
	TemplateName string    `gorm:"column:template_name;not null;default:''" json:"template_name,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FundingProgram) TableName() string { return "funding_program" }

func (p *FundingProgram) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
