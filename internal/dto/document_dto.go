package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	URL            string                 `json:"url" validate:"required,url"`
	Metadata       map[string]interface{} `json:"metadata"`
	ConversationId *uuid.UUID             `json:"conversation_id"`
}

type DocumentResponse struct {
	Id        uuid.UUID              `json:"id"`
	URL       string                 `json:"url"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
