package service

import (
	"context"
	"encoding/json"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IngestJob is the queue payload asking the consumer to index a record.
type IngestJob struct {
	RecordId uuid.UUID `json:"record_id"`
}

type IMedicalRecordService interface {
	Create(ctx context.Context, userId uuid.UUID, req dto.CreateMedicalRecordRequest) (*dto.MedicalRecordResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]dto.MedicalRecordResponse, error)
	Get(ctx context.Context, userId, recordId uuid.UUID) (*dto.MedicalRecordResponse, error)
	Delete(ctx context.Context, userId, recordId uuid.UUID) error
}

type MedicalRecordService struct {
	uowFactory  unitofwork.RepositoryFactory
	queue       message.Publisher
	ingestTopic string
	logger      logger.ILogger
}

func NewMedicalRecordService(
	uowFactory unitofwork.RepositoryFactory,
	queue message.Publisher,
	ingestTopic string,
	log logger.ILogger,
) IMedicalRecordService {
	return &MedicalRecordService{
		uowFactory:  uowFactory,
		queue:       queue,
		ingestTopic: ingestTopic,
		logger:      log,
	}
}

// Create registers the record and queues it for background indexing.
func (s *MedicalRecordService) Create(ctx context.Context, userId uuid.UUID, req dto.CreateMedicalRecordRequest) (*dto.MedicalRecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record := &entity.MedicalRecord{
		UserId:      userId,
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		Description: req.Description,
	}
	if err := uow.MedicalRecordRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(IngestJob{RecordId: record.Id})
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.queue.Publish(s.ingestTopic, msg); err != nil {
		s.logger.Error("medical_record", "failed to queue ingestion", map[string]interface{}{
			"record_id": record.Id.String(),
			"error":     err.Error(),
		})
		return nil, err
	}

	s.logger.Info("medical_record", "record created and queued", map[string]interface{}{
		"record_id": record.Id.String(),
	})
	return toMedicalRecordResponse(record), nil
}

func (s *MedicalRecordService) List(ctx context.Context, userId uuid.UUID) ([]dto.MedicalRecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	records, err := uow.MedicalRecordRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderByCreatedAtDesc{},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MedicalRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, *toMedicalRecordResponse(record))
	}
	return responses, nil
}

func (s *MedicalRecordService) Get(ctx context.Context, userId, recordId uuid.UUID) (*dto.MedicalRecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := s.loadOwnedRecord(ctx, uow, userId, recordId)
	if err != nil {
		return nil, err
	}
	return toMedicalRecordResponse(record), nil
}

func (s *MedicalRecordService) Delete(ctx context.Context, userId, recordId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.loadOwnedRecord(ctx, uow, userId, recordId); err != nil {
		return err
	}
	return uow.MedicalRecordRepository().Delete(ctx, recordId)
}

func (s *MedicalRecordService) loadOwnedRecord(ctx context.Context, uow unitofwork.UnitOfWork, userId, recordId uuid.UUID) (*entity.MedicalRecord, error) {
	record, err := uow.MedicalRecordRepository().FindOne(ctx, specification.ByID{ID: recordId})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if record.UserId != userId {
		return nil, ErrNotAuthorized
	}
	return record, nil
}

func toMedicalRecordResponse(record *entity.MedicalRecord) *dto.MedicalRecordResponse {
	return &dto.MedicalRecordResponse{
		Id:          record.Id,
		FileName:    record.FileName,
		FilePath:    record.FilePath,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
