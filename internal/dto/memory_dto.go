package dto

import (
	"time"

	"github.com/google/uuid"
)

type AddMemoryRequest struct {
	Type            string                 `json:"type" validate:"required,oneof=episodic semantic procedural"`
	Content         map[string]interface{} `json:"content" validate:"required"`
	Metadata        map[string]interface{} `json:"metadata"`
	ImportanceScore float64                `json:"importance_score"`
}

type QueryMemoriesRequest struct {
	Query string `json:"query" validate:"required"`
	Type  string `json:"type" validate:"omitempty,oneof=episodic semantic procedural"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type ForgetMemoriesRequest struct {
	ThresholdDays       int     `json:"threshold_days" validate:"omitempty,min=1"`
	ImportanceThreshold float64 `json:"importance_threshold"`
}

type MemoryResponse struct {
	Id              uuid.UUID              `json:"id"`
	Type            string                 `json:"type"`
	Content         map[string]interface{} `json:"content"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	ImportanceScore float64                `json:"importance_score"`
	LastAccessed    time.Time              `json:"last_accessed"`
	CreatedAt       time.Time              `json:"created_at"`
}

type MemoryQueryResult struct {
	Memory MemoryResponse `json:"memory"`
	Score  float64        `json:"score"`
}

type ForgetMemoriesResponse struct {
	Forgotten int `json:"forgotten"`
}
