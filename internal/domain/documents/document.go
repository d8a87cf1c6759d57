package documents

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DocumentTypeVorhabensbeschreibung = "vorhabensbeschreibung"

// Document is the persisted aggregate root. ContentJSON and ChatHistory are only ever replaced
// wholesale through SetContent / SetMessages and written by an explicit aggregate save.
type Document struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	FundingProgramID *uuid.UUID `gorm:"type:uuid;column:funding_program_id;index" json:"funding_program_id,omitempty"`

	Type  string `gorm:"column:type;not null;index" json:"type"`
	Title string `gorm:"column:title;not null;default:''" json:"title"`

	ContentJSON datatypes.JSON `gorm:"column:content_json;not null" json:"content_json"`
	ChatHistory datatypes.JSON `gorm:"column:chat_history;not null" json:"chat_history"`

	HeadingsConfirmed bool       `gorm:"column:headings_confirmed;not null;default:false" json:"headings_confirmed"`
	TemplateID        *uuid.UUID `gorm:"type:uuid;column:template_id" json:"template_id,omitempty"`
	TemplateName      string     `gorm:"column:template_name;not null;default:''" json:"template_name,omitempty"`

	Version int `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if len(d.ContentJSON) == 0 {
		d.ContentJSON = datatypes.JSON(`{"sections":[]}`)
	}
	if len(d.ChatHistory) == 0 {
		d.ChatHistory = datatypes.JSON(`[]`)
	}
	return nil
}

// Content decodes content_json. An empty column decodes to an empty section list.
func (d *Document) Content() (Content, error) {
	var c Content
	if d == nil || len(strings.TrimSpace(string(d.ContentJSON))) == 0 {
		return Content{Sections: []Section{}}, nil
	}
	if err := json.Unmarshal(d.ContentJSON, &c); err != nil {
		return Content{}, fmt.Errorf("decode content_json: %w", err)
	}
	if c.Sections == nil {
		c.Sections = []Section{}
	}
	return c, nil
}

// SetContent re-encodes the whole content document.
func (d *Document) SetContent(c Content) error {
	if c.Sections == nil {
		c.Sections = []Section{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode content_json: %w", err)
	}
	d.ContentJSON = datatypes.JSON(b)
	return nil
}

func (d *Document) Messages() ([]ChatMessage, error) {
	if d == nil || len(strings.TrimSpace(string(d.ChatHistory))) == 0 {
		return []ChatMessage{}, nil
	}
	var msgs []ChatMessage
	if err := json.Unmarshal(d.ChatHistory, &msgs); err != nil {
		return nil, fmt.Errorf("decode chat_history: %w", err)
	}
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	return msgs, nil
}

func (d *Document) SetMessages(msgs []ChatMessage) error {
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode chat_history: %w", err)
	}
	d.ChatHistory = datatypes.JSON(b)
	return nil
}

// AppendMessages appends to the chat history; history is never rewritten.
func (d *Document) AppendMessages(msgs ...ChatMessage) error {
	cur, err := d.Messages()
	if err != nil {
		return err
	}
	return d.SetMessages(append(cur, msgs...))
}

// Clone copies the row including JSON buffers so a failed mutation never leaks into the original.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.ContentJSON = append(datatypes.JSON(nil), d.ContentJSON...)
	out.ChatHistory = append(datatypes.JSON(nil), d.ChatHistory...)
	if d.FundingProgramID != nil {
		id := *d.FundingProgramID
		out.FundingProgramID = &id
	}
	if d.TemplateID != nil {
		id := *d.TemplateID
		out.TemplateID = &id
	}
	return &out
}
