package entity

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	FileName    string
	FilePath    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
