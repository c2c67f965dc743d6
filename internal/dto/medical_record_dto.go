package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMedicalRecordRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	FilePath    string `json:"file_path" validate:"required"`
	Description string `json:"description"`
}

type MedicalRecordResponse struct {
	Id          uuid.UUID  `json:"id"`
	FileName    string     `json:"file_name"`
	FilePath    string     `json:"file_path"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
