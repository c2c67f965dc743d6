package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type RenameConversationRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type MessageSubProcessResponse struct {
	Id       uuid.UUID              `json:"id"`
	Status   string                 `json:"status"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type MessageResponse struct {
	Id           uuid.UUID                   `json:"id"`
	Role         string                      `json:"role"`
	Content      string                      `json:"content"`
	Status       string                      `json:"status"`
	CreatedAt    time.Time                   `json:"created_at"`
	SubProcesses []MessageSubProcessResponse `json:"sub_processes,omitempty"`
}

type ConversationDetailResponse struct {
	Id        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []MessageResponse `json:"messages"`
}

type ChatResponse struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	Response       string    `json:"response"`
}
