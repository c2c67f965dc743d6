package mapper

import (
	"encoding/json"

	"medassist-be/internal/entity"
	"medassist-be/internal/model"

	"gorm.io/datatypes"
)

type MemoryMapper struct{}

func NewMemoryMapper() *MemoryMapper {
	return &MemoryMapper{}
}

func (m *MemoryMapper) ToEntity(mem *model.Memory) *entity.Memory {
	if mem == nil {
		return nil
	}

	var embedding []float32
	if len(mem.Embedding) > 0 {
		// Stored as a JSON array; ignore malformed values rather than fail the read
		_ = json.Unmarshal(mem.Embedding, &embedding)
	}

	return &entity.Memory{
		Id:              mem.Id,
		UserId:          mem.UserId,
		Type:            entity.MemoryType(mem.Type),
		Content:         mem.Content,
		Metadata:        mem.Metadata,
		Embedding:       embedding,
		ImportanceScore: mem.ImportanceScore,
		LastAccessed:    mem.LastAccessed,
		CreatedAt:       mem.CreatedAt,
	}
}

func (m *MemoryMapper) ToModel(mem *entity.Memory) *model.Memory {
	if mem == nil {
		return nil
	}

	var embedding datatypes.JSON
	if mem.Embedding != nil {
		b, err := json.Marshal(mem.Embedding)
		if err == nil {
			embedding = b
		}
	}

	return &model.Memory{
		Id:              mem.Id,
		UserId:          mem.UserId,
		Type:            string(mem.Type),
		Content:         mem.Content,
		Metadata:        mem.Metadata,
		Embedding:       embedding,
		ImportanceScore: mem.ImportanceScore,
		LastAccessed:    mem.LastAccessed,
		CreatedAt:       mem.CreatedAt,
	}
}
