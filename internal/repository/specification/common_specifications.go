package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type OrderByCreatedAtAsc struct{}

func (s OrderByCreatedAtAsc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

type OrderByCreatedAtDesc struct{}

func (s OrderByCreatedAtDesc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

type Limit struct {
	Count int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Count)
}
