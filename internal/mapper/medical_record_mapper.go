package mapper

import (
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/model"
)

type MedicalRecordMapper struct{}

func NewMedicalRecordMapper() *MedicalRecordMapper {
	return &MedicalRecordMapper{}
}

func (m *MedicalRecordMapper) ToEntity(r *model.MedicalRecord) *entity.MedicalRecord {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.MedicalRecord{
		Id:          r.Id,
		UserId:      r.UserId,
		FileName:    r.FileName,
		FilePath:    r.FilePath,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *MedicalRecordMapper) ToModel(r *entity.MedicalRecord) *model.MedicalRecord {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.MedicalRecord{
		Id:          r.Id,
		UserId:      r.UserId,
		FileName:    r.FileName,
		FilePath:    r.FilePath,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
