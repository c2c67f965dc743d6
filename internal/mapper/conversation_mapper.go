package mapper

import (
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:         c.Id,
		UserId:     c.UserId,
		DocumentId: c.DocumentId,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:         c.Id,
		UserId:     c.UserId,
		DocumentId: c.DocumentId,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           entity.MessageRole(msg.Role),
		Content:        msg.Content,
		Status:         entity.MessageStatus(msg.Status),
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Status:         string(msg.Status),
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

// SubProcess Mappers

func (m *ConversationMapper) SubProcessToEntity(sp *model.MessageSubProcess) *entity.MessageSubProcess {
	if sp == nil {
		return nil
	}
	return &entity.MessageSubProcess{
		Id:        sp.Id,
		MessageId: sp.MessageId,
		Status:    entity.SubProcessStatus(sp.Status),
		Metadata:  sp.Metadata,
		CreatedAt: sp.CreatedAt,
	}
}

func (m *ConversationMapper) SubProcessToModel(sp *entity.MessageSubProcess) *model.MessageSubProcess {
	if sp == nil {
		return nil
	}
	return &model.MessageSubProcess{
		Id:        sp.Id,
		MessageId: sp.MessageId,
		Status:    string(sp.Status),
		Metadata:  sp.Metadata,
		CreatedAt: sp.CreatedAt,
	}
}
