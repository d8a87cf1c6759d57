package documents

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	MessageKindQuestion      = "question"
	MessageKindAnswer        = "answer"
	MessageKindEditRequest   = "edit_request"
	MessageKindProposal      = "proposal"
	MessageKindConfirmation  = "confirmation"
	MessageKindClarification = "clarification"
	MessageKindFailure       = "failure"
)

// ChatMessage is one entry of a document's append-only chat history.
type ChatMessage struct {
	MessageID            string            `json:"message_id"`
	Role                 string            `json:"role"`
	Text                 string            `json:"text"`
	Timestamp            time.Time         `json:"timestamp"`
	SuggestedContent     map[string]string `json:"suggested_content,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Kind                 string            `json:"kind,omitempty"`
	SectionIDs           []string          `json:"section_ids,omitempty"`
}
