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

type MessageSubProcessRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewMessageSubProcessRepository(db *gorm.DB) contract.MessageSubProcessRepository {
	return &MessageSubProcessRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *MessageSubProcessRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageSubProcessRepositoryImpl) Create(ctx context.Context, subProcess *entity.MessageSubProcess) error {
	m := r.mapper.SubProcessToModel(subProcess)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subProcess = *r.mapper.SubProcessToEntity(m)
	return nil
}

func (r *MessageSubProcessRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MessageSubProcess, error) {
	var models []*model.MessageSubProcess
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MessageSubProcess, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SubProcessToEntity(m)
	}
	return entities, nil
}

func (r *MessageSubProcessRepositoryImpl) DeleteByMessageId(ctx context.Context, messageId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("message_id = ?", messageId).Delete(&model.MessageSubProcess{}).Error
}
