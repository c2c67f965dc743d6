package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/embedding"
	"medassist-be/pkg/events"
	"medassist-be/pkg/textsplit"
	"medassist-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	ingestChunkSize    = 1500
	ingestChunkOverlap = 200
)

// IngestConsumerService indexes queued medical records: it reads the
// file, chunks it, embeds every chunk and upserts the vectors under the
// owner's id.
type IngestConsumerService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber message.Subscriber
	topic      string
	embedder   embedding.Provider
	store      vectorstore.Service
	collection string
	publisher  EventPublisher
	logger     logger.ILogger
}

func NewIngestConsumerService(
	uowFactory unitofwork.RepositoryFactory,
	subscriber message.Subscriber,
	topic string,
	embedder embedding.Provider,
	store vectorstore.Service,
	collection string,
	publisher EventPublisher,
	log logger.ILogger,
) *IngestConsumerService {
	return &IngestConsumerService{
		uowFactory: uowFactory,
		subscriber: subscriber,
		topic:      topic,
		embedder:   embedder,
		store:      store,
		collection: collection,
		publisher:  publisher,
		logger:     log,
	}
}

// Start consumes until the context is cancelled. A failed job is
// Nacked for redelivery.
func (s *IngestConsumerService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, err)
	}

	s.logger.Info("ingest", "consumer started", map[string]interface{}{"topic": s.topic})

	for msg := range messages {
		if err := s.process(ctx, msg); err != nil {
			s.logger.Error("ingest", "failed to process job", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return nil
}

func (s *IngestConsumerService) process(ctx context.Context, msg *message.Message) error {
	var job IngestJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		return fmt.Errorf("invalid job payload: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.MedicalRecordRepository().FindOne(ctx, specification.ByID{ID: job.RecordId})
	if err != nil {
		return err
	}
	if record == nil {
		// Record deleted before ingestion ran; nothing to index.
		s.logger.Warn("ingest", "record vanished before ingestion", map[string]interface{}{
			"record_id": job.RecordId.String(),
		})
		return nil
	}

	content, err := os.ReadFile(record.FilePath)
	if err != nil {
		if record.Description == "" {
			return fmt.Errorf("failed to read %s and no description to fall back on: %w", record.FilePath, err)
		}
		content = []byte(record.Description)
	}

	chunks := textsplit.SplitText(string(content), ingestChunkSize, ingestChunkOverlap)

	docs := make([]vectorstore.Document, 0, len(chunks))
	for i, chunk := range chunks {
		resp, err := s.embedder.Generate(chunk, "retrieval_document")
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		docs = append(docs, vectorstore.Document{
			ID:     fmt.Sprintf("%s:%d", record.Id.String(), i),
			Text:   chunk,
			Vector: resp.Embedding.Values,
			Payload: map[string]interface{}{
				"record_id":   record.Id.String(),
				"user_id":     record.UserId.String(),
				"file_name":   record.FileName,
				"chunk_index": i,
			},
		})
	}

	if err := s.store.Upsert(ctx, s.collection, docs); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	err = s.publisher.Publish(ctx, events.BaseEvent{
		Type: "RECORD_INGESTED",
		Data: map[string]interface{}{
			"record_id": record.Id.String(),
			"user_id":   record.UserId.String(),
			"chunks":    len(chunks),
		},
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("ingest", "failed to publish ingested event", map[string]interface{}{"error": err.Error()})
	}

	s.logger.Info("ingest", "record indexed", map[string]interface{}{
		"record_id": record.Id.String(),
		"chunks":    len(chunks),
	})
	return nil
}
