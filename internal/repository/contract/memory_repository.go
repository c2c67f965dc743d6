package contract

import (
	"context"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MemoryRepository interface {
	Create(ctx context.Context, memory *entity.Memory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Memory, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Memory, error)
	TouchLastAccessed(ctx context.Context, id uuid.UUID, at time.Time) error
	AddImportance(ctx context.Context, id uuid.UUID, delta float64) error
}
