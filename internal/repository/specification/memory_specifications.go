package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByMemoryType struct {
	Type string
}

func (s ByMemoryType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

// LastAccessedBefore matches memories untouched since the cutoff.
type LastAccessedBefore struct {
	Cutoff time.Time
}

func (s LastAccessedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_accessed < ?", s.Cutoff)
}

type ImportanceBelow struct {
	Threshold float64
}

func (s ImportanceBelow) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("importance_score < ?", s.Threshold)
}
