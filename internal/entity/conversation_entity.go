package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string
type MessageStatus string
type SubProcessStatus string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"

	MessageStatusPending MessageStatus = "PENDING"
	MessageStatusSuccess MessageStatus = "SUCCESS"
	MessageStatusError   MessageStatus = "ERROR"

	SubProcessStatusPending  SubProcessStatus = "PENDING"
	SubProcessStatusFinished SubProcessStatus = "FINISHED"
)

type Conversation struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	DocumentId *uuid.UUID
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           MessageRole
	Content        string
	Status         MessageStatus
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// MessageSubProcess records one tool invocation made while generating
// an assistant message. Audit only, not required by the chat loop.
type MessageSubProcess struct {
	Id        uuid.UUID
	MessageId uuid.UUID
	Status    SubProcessStatus
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
