package implementation

import (
	"context"

	"medassist-be/internal/entity"
	"medassist-be/internal/mapper"
	"medassist-be/internal/model"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewConversationDocumentRepository(db *gorm.DB) contract.ConversationDocumentRepository {
	return &ConversationDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *ConversationDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationDocumentRepositoryImpl) Create(ctx context.Context, link *entity.ConversationDocument) error {
	m := r.mapper.LinkToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.LinkToEntity(m)
	return nil
}

func (r *ConversationDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationDocument, error) {
	var models []*model.ConversationDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationDocument, len(models))
	for i, m := range models {
		entities[i] = r.mapper.LinkToEntity(m)
	}
	return entities, nil
}

func (r *ConversationDocumentRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.ConversationDocument{}).Error
}
