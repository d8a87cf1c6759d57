package docgentest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/headings"
)

// Documents is an in-memory aggregates.DocumentAggregate with the same version and
// heading-lock rules as the database implementation.
type Documents struct {
	mu     sync.Mutex
	docs   map[uuid.UUID]*documents.Document
	saves  int
	Policy headings.Policy

	// AfterSave, when set, may tamper with the stored copy.
	AfterSave func(stored *documents.Document)
}

var _ aggregates.DocumentAggregate = (*Documents)(nil)

func NewDocuments() *Documents {
	return &Documents{docs: map[uuid.UUID]*documents.Document{}}
}

func (s *Documents) Contract() aggregates.Contract {
	return aggregates.DocumentAggregateContract
}

func (s *Documents) Load(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, aggregates.NewError(aggregates.CodeNotFound, "docgentest.Load", "document not found", nil)
	}
	return doc.Clone(), nil
}

func (s *Documents) Create(_ context.Context, doc *documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if _, exists := s.docs[doc.ID]; exists {
		return aggregates.NewError(aggregates.CodeConflict, "docgentest.Create", "document exists", nil)
	}
	if len(doc.ContentJSON) == 0 {
		_ = doc.SetContent(documents.Content{})
	}
	if len(doc.ChatHistory) == 0 {
		_ = doc.SetMessages(nil)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *Documents) Save(_ context.Context, doc *documents.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[doc.ID]
	if !ok {
		return aggregates.NewError(aggregates.CodeNotFound, "docgentest.Save", "document not found", nil)
	}
	if cur.Version != doc.Version {
		return aggregates.NewError(aggregates.CodeConflict, "docgentest.Save", "version mismatch", nil)
	}
	if err := headings.CheckTransition(cur, doc, s.Policy); err != nil {
		return err
	}
	doc.Version++
	stored := doc.Clone()
	if s.AfterSave != nil {
		s.AfterSave(stored)
	}
	s.docs[doc.ID] = stored
	s.saves++
	return nil
}

// Seed stores a document with the given sections and returns its id.
func (s *Documents) Seed(sections ...documents.Section) uuid.UUID {
	doc := &documents.Document{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Type:      documents.DocumentTypeVorhabensbeschreibung,
	}
	_ = doc.SetContent(documents.Content{Sections: sections})
	_ = doc.SetMessages(nil)
	_ = s.Create(context.Background(), doc)
	return doc.ID
}

func (s *Documents) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Sections returns the stored sections of id.
func (s *Documents) Sections(id uuid.UUID) []documents.Section {
	doc, err := s.Load(context.Background(), id)
	if err != nil {
		return nil
	}
	c, _ := doc.Content()
	return c.Sections
}
