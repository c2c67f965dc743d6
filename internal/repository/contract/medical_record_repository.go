package contract

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MedicalRecordRepository interface {
	Create(ctx context.Context, record *entity.MedicalRecord) error
	Update(ctx context.Context, record *entity.MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MedicalRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MedicalRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
