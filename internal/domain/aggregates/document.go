package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/vorhaben-backend/internal/domain/documents"
)

var DocumentAggregateContract = Contract{
	Name:             "Docgen.DocumentAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns whole-row document saves: version CAS, heading lock against persisted state.",
}

// DocumentAggregate is the persistence port for documents.
//
// Save writes content_json, chat_history and flags in one statement guarded by Version.
// On success the passed document's Version is advanced. Write failures return *aggregates.Error
// with CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation, CodeRetryable or CodeInternal.
type DocumentAggregate interface {
	Aggregate

	Load(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	Create(ctx context.Context, doc *documents.Document) error
	Save(ctx context.Context, doc *documents.Document) error
}
