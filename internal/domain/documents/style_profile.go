package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StyleProfile is a style summary extracted from historical applications.
// CombinedHash identifies the set of source texts it was derived from.
type StyleProfile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CombinedHash string         `gorm:"column:combined_hash;not null;uniqueIndex" json:"combined_hash"`
	SourceCount  int            `gorm:"column:source_count;not null;default:0" json:"source_count"`
	Profile      datatypes.JSON `gorm:"column:profile;not null" json:"profile"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StyleProfile) TableName() string { return "style_profile" }

func (p *StyleProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
