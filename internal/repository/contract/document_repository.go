package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
}

type ConversationDocumentRepository interface {
	Create(ctx context.Context, link *entity.ConversationDocument) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationDocument, error)
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
}
