package implementation

import (
	"context"
	"errors"

	"medassist-be/internal/entity"
	"medassist-be/internal/mapper"
	"medassist-be/internal/model"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MedicalRecordMapper
}

func NewMedicalRecordRepository(db *gorm.DB) contract.MedicalRecordRepository {
	return &MedicalRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewMedicalRecordMapper(),
	}
}

func (r *MedicalRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MedicalRecordRepositoryImpl) Create(ctx context.Context, record *entity.MedicalRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *MedicalRecordRepositoryImpl) Update(ctx context.Context, record *entity.MedicalRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *MedicalRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MedicalRecord{}, id).Error
}

func (r *MedicalRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MedicalRecord, error) {
	var m model.MedicalRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MedicalRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MedicalRecord, error) {
	var models []*model.MedicalRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MedicalRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *MedicalRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.MedicalRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
