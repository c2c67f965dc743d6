package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	Update(ctx context.Context, message *entity.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type MessageSubProcessRepository interface {
	Create(ctx context.Context, subProcess *entity.MessageSubProcess) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MessageSubProcess, error)
	DeleteByMessageId(ctx context.Context, messageId uuid.UUID) error
}
