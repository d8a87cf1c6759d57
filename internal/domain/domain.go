package domain

import (
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

const (
	DocumentTypeVorhabensbeschreibung = documents.DocumentTypeVorhabensbeschreibung

	SectionTypeText           = documents.SectionTypeText
	SectionTypeMilestoneTable = documents.SectionTypeMilestoneTable

	TemplateSourceSystem = documents.TemplateSourceSystem
	TemplateSourceUser   = documents.TemplateSourceUser
	DefaultTemplateName  = documents.DefaultTemplateName
)

type Document = documents.Document
type Content = documents.Content
type Section = documents.Section
type ChatMessage = documents.ChatMessage

type Company = documents.Company
type FundingProgram = documents.FundingProgram

type TemplateSpec = documents.TemplateSpec
type TemplateSection = documents.TemplateSection
type UserTemplate = documents.UserTemplate

type StyleProfile = documents.StyleProfile
