package entity

import (
	"time"

	"github.com/google/uuid"
)

type MemoryType string

const (
	MemoryTypeEpisodic   MemoryType = "episodic"
	MemoryTypeSemantic   MemoryType = "semantic"
	MemoryTypeProcedural MemoryType = "procedural"
)

// Memory is a user-scoped semantic memory entry. LastAccessed and
// ImportanceScore drive decay-based forgetting.
type Memory struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Type            MemoryType
	Content         map[string]interface{}
	Metadata        map[string]interface{}
	Embedding       []float32
	ImportanceScore float64
	LastAccessed    time.Time
	CreatedAt       time.Time
}
