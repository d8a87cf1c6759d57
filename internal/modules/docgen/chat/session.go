// Package chat runs the document chat: questions are answered, edit requests become
// proposals that only touch a section once the user confirms them.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/editor"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/grounding"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/instructions"
	"github.com/yungbote/vorhaben-backend/internal/modules/docgen/sectionid"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

type Config struct {
	// DefaultSectionFallback targets the first text section when a message names no
	// section at all, instead of asking for clarification.
	DefaultSectionFallback bool
	HistoryWindow          int
	TitleThreshold         float64
	AnswerTimeout          time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		DefaultSectionFallback: envutil.Bool("CHAT_DEFAULT_SECTION_FALLBACK", false),
		HistoryWindow:          envutil.Int("CHAT_HISTORY_WINDOW", 3),
		TitleThreshold:         envutil.Float("DOCGEN_TITLE_MATCH_THRESHOLD", sectionid.DefaultTitleThreshold),
		AnswerTimeout:          envutil.Seconds("CHAT_ANSWER_TIMEOUT_SECONDS", 90*time.Second),
	}
}

type Input struct {
	DocumentID    uuid.UUID
	Message       string
	LastEditedIDs []string
	Factual       grounding.FactualContext
	StyleGuide    string
}

type Result struct {
	Message              string              `json:"message"`
	IsQuestion           bool                `json:"is_question"`
	UpdatedSections      []string            `json:"updated_sections"`
	SuggestedContent     map[string]string   `json:"suggested_content,omitempty"`
	RequiresConfirmation bool                `json:"requires_confirmation"`
	Kind                 string              `json:"kind"`
	Document             *documents.Document `json:"-"`
}

// Session holds an Editor, never a batch generator: chat can only revise sections.
type Session struct {
	log    *logger.Logger
	docs   aggregates.DocumentAggregate
	editor *editor.Editor
	llm    openai.Client
	parser *instructions.Parser
	cfg    Config

	now   func() time.Time
	newID func() string
}

func NewSession(log *logger.Logger, docs aggregates.DocumentAggregate, ed *editor.Editor, llm openai.Client, cfg Config) *Session {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 3
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = 90 * time.Second
	}
	return &Session{
		log:    log.With("service", "ChatSession"),
		docs:   docs,
		editor: ed,
		llm:    llm,
		parser: instructions.NewParser(cfg.TitleThreshold),
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// HandleMessage answers a question or turns an edit request into a proposal. Both the
// user message and the reply are appended to the history in one save. Invalid section
// references fail with CodeValidation and nothing is stored.
func (s *Session) HandleMessage(ctx context.Context, in Input) (Result, error) {
	const op = "chat.HandleMessage"
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return Result{}, aggregates.NewError(aggregates.CodeValidation, op, "message is empty", nil)
	}
	doc, err := s.docs.Load(ctx, in.DocumentID)
	if err != nil {
		return Result{}, err
	}
	content, err := doc.Content()
	if err != nil {
		return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	history, err := doc.Messages()
	if err != nil {
		return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	if instructions.IsQuestion(text) {
		return s.answer(ctx, doc, content, history, in, text)
	}
	return s.edit(ctx, doc, content, in, text)
}

func (s *Session) answer(ctx context.Context, doc *documents.Document, content documents.Content, history []documents.ChatMessage, in Input, text string) (Result, error) {
	userMsg := s.message(documents.RoleUser, documents.MessageKindQuestion, text)
	resp, err := s.llm.Complete(ctx, openai.Request{
		System:  answerSystemPrompt,
		User:    buildAnswerPrompt(content, in.Factual, lastMessages(history, s.cfg.HistoryWindow), text),
		Timeout: s.cfg.AnswerTimeout,
	})
	reply := s.message(documents.RoleAssistant, documents.MessageKindAnswer, strings.TrimSpace(resp.Text))
	if err != nil || reply.Text == "" {
		s.log.Warn("question answering failed", "document_id", doc.ID, "error", err)
		reply = s.message(documents.RoleAssistant, documents.MessageKindFailure,
			"Sorry, I could not answer that question right now. Please try again.")
	}
	if err := s.appendAndSave(ctx, doc, userMsg, reply); err != nil {
		return Result{}, err
	}
	return Result{
		Message:         reply.Text,
		IsQuestion:      true,
		UpdatedSections: []string{},
		Kind:            reply.Kind,
		Document:        doc,
	}, nil
}

func (s *Session) edit(ctx context.Context, doc *documents.Document, content documents.Content, in Input, text string) (Result, error) {
	validIDs := content.IDs()
	changes := s.parser.Parse(text, validIDs, content.Sections)
	if len(changes) == 0 {
		changes = instructions.ParseStrict(text, validIDs)
	}
	if err := instructions.Validate(changes, validIDs); err != nil {
		return Result{}, err
	}
	userMsg := s.message(documents.RoleUser, documents.MessageKindEditRequest, text)

	if len(changes) == 0 {
		if fallback, ok := firstTextSection(content); ok && s.cfg.DefaultSectionFallback {
			s.log.Info("no section named, using default section", "document_id", doc.ID, "section_id", fallback)
			changes = []documents.EditChange{{SectionID: fallback, Instruction: text}}
		} else {
			question, _ := instructions.NeedsClarification(text, validIDs, content.Sections, in.LastEditedIDs)
			reply := s.message(documents.RoleAssistant, documents.MessageKindClarification, question)
			if err := s.appendAndSave(ctx, doc, userMsg, reply); err != nil {
				return Result{}, err
			}
			return Result{Message: question, UpdatedSections: []string{}, Kind: reply.Kind, Document: doc}, nil
		}
	}

	index := sectionIndex(content)
	suggested := map[string]string{}
	var proposed, failed, skipped []string
	for _, c := range changes {
		sec, ok := index[sectionid.Normalize(c.SectionID)]
		if !ok {
			failed = append(failed, c.SectionID)
			continue
		}
		if sec.IsMilestoneTable() {
			skipped = append(skipped, sec.ID)
			continue
		}
		revised, err := s.editor.EditSection(ctx, editor.Request{
			SectionID:      sec.ID,
			Title:          sec.Title,
			Type:           sec.Type,
			CurrentContent: sec.Content,
			Instruction:    c.Instruction,
			Factual:        in.Factual,
			StyleGuide:     in.StyleGuide,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			s.log.Warn("section edit dropped from proposal", "document_id", doc.ID, "section_id", sec.ID, "error", err)
			failed = append(failed, sec.ID)
			continue
		}
		suggested[sec.ID] = revised
		proposed = append(proposed, sec.ID)
	}
	userMsg.SectionIDs = changeIDs(changes)

	var reply documents.ChatMessage
	if len(suggested) == 0 {
		reply = s.message(documents.RoleAssistant, documents.MessageKindFailure, failureText(failed, skipped))
		reply.SectionIDs = append(failed, skipped...)
	} else {
		reply = s.message(documents.RoleAssistant, documents.MessageKindProposal, proposalText(proposed, failed, skipped))
		reply.SuggestedContent = suggested
		reply.RequiresConfirmation = true
		reply.SectionIDs = proposed
	}
	if err := s.appendAndSave(ctx, doc, userMsg, reply); err != nil {
		return Result{}, err
	}
	if proposed == nil {
		proposed = []string{}
	}
	return Result{
		Message:              reply.Text,
		UpdatedSections:      proposed,
		SuggestedContent:     reply.SuggestedContent,
		RequiresConfirmation: reply.RequiresConfirmation,
		Kind:                 reply.Kind,
		Document:             doc,
	}, nil
}

// Confirm commits content to one section exactly as given and records the confirmation.
// The stored content is re-read and compared byte for byte.
func (s *Session) Confirm(ctx context.Context, docID uuid.UUID, sectionID, confirmed string) (Result, error) {
	const op = "chat.Confirm"
	if strings.TrimSpace(sectionID) == "" {
		return Result{}, aggregates.NewError(aggregates.CodeValidation, op, "section_id is required", nil)
	}
	doc, err := s.docs.Load(ctx, docID)
	if err != nil {
		return Result{}, err
	}
	content, err := doc.Content()
	if err != nil {
		return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	pos := -1
	for i, sec := range content.Sections {
		if sectionid.Equal(sec.ID, sectionID) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Result{}, aggregates.NewError(aggregates.CodeNotFound, op,
			fmt.Sprintf("Section %s not found. Available sections: %s", sectionid.Normalize(sectionID), strings.Join(content.IDs(), ", ")), nil)
	}
	target := content.Sections[pos]
	if target.IsMilestoneTable() {
		return Result{}, aggregates.NewError(aggregates.CodeValidation, op, "milestone tables cannot be changed via chat: "+target.ID, nil)
	}

	content.Sections[pos].Content = confirmed
	if err := doc.SetContent(content); err != nil {
		return Result{}, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	reply := s.message(documents.RoleAssistant, documents.MessageKindConfirmation,
		fmt.Sprintf("Section %s has been updated.", target.ID))
	reply.SectionIDs = []string{target.ID}
	if err := s.appendAndSave(ctx, doc, reply); err != nil {
		return Result{}, err
	}

	stored, err := s.docs.Load(ctx, docID)
	if err != nil {
		return Result{}, err
	}
	if err := verifyContent(stored, target.ID, confirmed); err != nil {
		s.log.Error("confirmed content mismatch", "document_id", docID, "section_id", target.ID)
		return Result{}, err
	}
	return Result{
		Message:         reply.Text,
		UpdatedSections: []string{target.ID},
		Kind:            reply.Kind,
		Document:        stored,
	}, nil
}

// Pending returns the proposals of a document that are still awaiting confirmation.
func (s *Session) Pending(ctx context.Context, docID uuid.UUID) (map[string]string, error) {
	msgs, err := s.History(ctx, docID)
	if err != nil {
		return nil, err
	}
	return PendingSuggestions(msgs), nil
}

func (s *Session) History(ctx context.Context, docID uuid.UUID) ([]documents.ChatMessage, error) {
	doc, err := s.docs.Load(ctx, docID)
	if err != nil {
		return nil, err
	}
	msgs, err := doc.Messages()
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, "chat.History", err)
	}
	return msgs, nil
}

// PendingSuggestions replays a history: the latest proposal per section stays pending
// until a confirmation for that section follows it.
func PendingSuggestions(msgs []documents.ChatMessage) map[string]string {
	pending := map[string]string{}
	keys := map[string]string{}
	for _, m := range msgs {
		if m.Role != documents.RoleAssistant {
			continue
		}
		switch {
		case m.RequiresConfirmation:
			for id, text := range m.SuggestedContent {
				n := sectionid.Normalize(id)
				if old, ok := keys[n]; ok {
					delete(pending, old)
				}
				keys[n] = id
				pending[id] = text
			}
		case m.Kind == documents.MessageKindConfirmation:
			for _, id := range m.SectionIDs {
				n := sectionid.Normalize(id)
				if old, ok := keys[n]; ok {
					delete(pending, old)
					delete(keys, n)
				}
			}
		}
	}
	return pending
}

func (s *Session) appendAndSave(ctx context.Context, doc *documents.Document, msgs ...documents.ChatMessage) error {
	if err := doc.AppendMessages(msgs...); err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, "chat.appendAndSave", err)
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Role == documents.RoleAssistant {
			observability.Current().IncChatMessage(m.Kind)
		}
	}
	return nil
}

func (s *Session) message(role, kind, text string) documents.ChatMessage {
	return documents.ChatMessage{
		MessageID: s.newID(),
		Role:      role,
		Text:      text,
		Timestamp: s.now(),
		Kind:      kind,
	}
}

func verifyContent(doc *documents.Document, sectionID, want string) error {
	content, err := doc.Content()
	if err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, "chat.verifyContent", err)
	}
	for _, sec := range content.Sections {
		if sec.ID == sectionID {
			if sec.Content != want {
				return aggregates.NewError(aggregates.CodeInvariantViolation, "chat.verifyContent",
					fmt.Sprintf("stored content of section %s does not match the confirmed content", sectionID), nil)
			}
			return nil
		}
	}
	return aggregates.NewError(aggregates.CodeInvariantViolation, "chat.verifyContent",
		fmt.Sprintf("section %s disappeared after confirmation", sectionID), nil)
}

func sectionIndex(c documents.Content) map[string]documents.Section {
	out := make(map[string]documents.Section, len(c.Sections))
	for _, sec := range c.Sections {
		out[sectionid.Normalize(sec.ID)] = sec
	}
	return out
}

func firstTextSection(c documents.Content) (string, bool) {
	for _, sec := range c.Sections {
		if sec.IsText() {
			return sec.ID, true
		}
	}
	return "", false
}

func changeIDs(changes []documents.EditChange) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.SectionID)
	}
	return out
}

func lastMessages(msgs []documents.ChatMessage, n int) []documents.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
