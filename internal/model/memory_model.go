package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Memory struct {
	Id              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type            string            `gorm:"type:varchar(20);not null"`
	Content         datatypes.JSONMap `gorm:"type:jsonb;not null"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding       datatypes.JSON    `gorm:"type:jsonb"`
	ImportanceScore float64           `gorm:"default:0"`
	LastAccessed    time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (Memory) TableName() string {
	return "memories"
}
