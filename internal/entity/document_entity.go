package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a URL-addressable resource with free-form metadata.
type Document struct {
	Id        uuid.UUID
	URL       string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// ConversationDocument links a conversation to a document (many-to-many).
type ConversationDocument struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	DocumentId     uuid.UUID
	CreatedAt      time.Time
}
