package services

import (
	"context"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/chat"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type ChatHistory struct {
	Messages           []documents.ChatMessage `json:"messages"`
	PendingSuggestions map[string]string       `json:"pending_suggestions"`
}

type ChatService interface {
	Send(ctx context.Context, docID uuid.UUID, message string, lastEdited []string) (chat.Result, error)
	Confirm(ctx context.Context, docID uuid.UUID, sectionID, content string) (chat.Result, error)
	History(ctx context.Context, docID uuid.UUID) (ChatHistory, error)
}

type chatService struct {
	log     *logger.Logger
	docs    domainagg.DocumentAggregate
	session *chat.Session
	inputs  ContextProvider
}

func NewChatService(log *logger.Logger, docs domainagg.DocumentAggregate, session *chat.Session, inputs ContextProvider) ChatService {
	return &chatService{
		log:     log.With("service", "ChatService"),
		docs:    docs,
		session: session,
		inputs:  inputs,
	}
}

func (s *chatService) Send(ctx context.Context, docID uuid.UUID, message string, lastEdited []string) (chat.Result, error) {
	doc, err := s.docs.Load(ctx, docID)
	if err != nil {
		return chat.Result{}, err
	}
	factual, err := s.inputs.FactualContext(ctx, doc.CompanyID)
	if err != nil {
		if !domainagg.IsCode(err, domainagg.CodeNotFound) {
			return chat.Result{}, err
		}
		s.log.Warn("company missing for document, chatting without facts", "document_id", docID)
	}
	return s.session.HandleMessage(ctx, chat.Input{
		DocumentID:    docID,
		Message:       message,
		LastEditedIDs: lastEdited,
		Factual:       factual,
	})
}

func (s *chatService) Confirm(ctx context.Context, docID uuid.UUID, sectionID, content string) (chat.Result, error) {
	return s.session.Confirm(ctx, docID, sectionID, content)
}

func (s *chatService) History(ctx context.Context, docID uuid.UUID) (ChatHistory, error) {
	msgs, err := s.session.History(ctx, docID)
	if err != nil {
		return ChatHistory{}, err
	}
	return ChatHistory{Messages: msgs, PendingSuggestions: chat.PendingSuggestions(msgs)}, nil
}
