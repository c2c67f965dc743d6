package mapper

import (
	"medassist-be/internal/entity"
	"medassist-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:        d.Id,
		URL:       d.URL,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:        d.Id,
		URL:       d.URL,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentMapper) LinkToEntity(l *model.ConversationDocument) *entity.ConversationDocument {
	if l == nil {
		return nil
	}
	return &entity.ConversationDocument{
		Id:             l.Id,
		ConversationId: l.ConversationId,
		DocumentId:     l.DocumentId,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *DocumentMapper) LinkToModel(l *entity.ConversationDocument) *model.ConversationDocument {
	if l == nil {
		return nil
	}
	return &model.ConversationDocument{
		Id:             l.Id,
		ConversationId: l.ConversationId,
		DocumentId:     l.DocumentId,
		CreatedAt:      l.CreatedAt,
	}
}
