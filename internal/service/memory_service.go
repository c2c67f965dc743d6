package service

import (
	"context"
	"encoding/json"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/embedding"
	"medassist-be/pkg/vectorstore"

	"github.com/google/uuid"
)

const (
	defaultForgetThresholdDays = 30
	defaultForgetImportance    = 0.3
	defaultMemoryQueryLimit    = 5

	// queryImportanceBoost is added to a memory's importance each time a
	// query retrieves it, so frequently recalled memories outlive the
	// forgetting pass.
	queryImportanceBoost = 0.1
)

type IMemoryService interface {
	Add(ctx context.Context, userId uuid.UUID, req dto.AddMemoryRequest) (*dto.MemoryResponse, error)
	Query(ctx context.Context, userId uuid.UUID, req dto.QueryMemoriesRequest) ([]dto.MemoryQueryResult, error)
	Forget(ctx context.Context, userId uuid.UUID, req dto.ForgetMemoriesRequest) (*dto.ForgetMemoriesResponse, error)
}

// MemoryService stores long term memories twice: the full row in
// Postgres and the embedding in the vector collection for similarity
// search. Query access refreshes last_accessed, which the forgetting
// pass uses as its decay signal.
type MemoryService struct {
	uowFactory unitofwork.RepositoryFactory
	store      vectorstore.Service
	embedder   embedding.Provider
	collection string
	logger     logger.ILogger
}

func NewMemoryService(
	uowFactory unitofwork.RepositoryFactory,
	store vectorstore.Service,
	embedder embedding.Provider,
	collection string,
	log logger.ILogger,
) IMemoryService {
	return &MemoryService{
		uowFactory: uowFactory,
		store:      store,
		embedder:   embedder,
		collection: collection,
		logger:     log,
	}
}

func (s *MemoryService) Add(ctx context.Context, userId uuid.UUID, req dto.AddMemoryRequest) (*dto.MemoryResponse, error) {
	contentText, err := json.Marshal(req.Content)
	if err != nil {
		return nil, err
	}

	resp, err := s.embedder.Generate(string(contentText), "retrieval_document")
	if err != nil {
		return nil, err
	}

	memory := &entity.Memory{
		UserId:          userId,
		Type:            entity.MemoryType(req.Type),
		Content:         req.Content,
		Metadata:        req.Metadata,
		Embedding:       resp.Embedding.Values,
		ImportanceScore: req.ImportanceScore,
		LastAccessed:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MemoryRepository().Create(ctx, memory); err != nil {
		return nil, err
	}

	err = s.store.Upsert(ctx, s.collection, []vectorstore.Document{{
		ID:     memory.Id.String(),
		Text:   string(contentText),
		Vector: resp.Embedding.Values,
		Payload: map[string]interface{}{
			"memory_id": memory.Id.String(),
			"user_id":   userId.String(),
			"type":      req.Type,
		},
	}})
	if err != nil {
		// Roll the row back so both stores stay consistent.
		if delErr := uow.MemoryRepository().Delete(ctx, memory.Id); delErr != nil {
			s.logger.Error("memory", "failed to undo memory row after vector failure", map[string]interface{}{
				"memory_id": memory.Id.String(),
				"error":     delErr.Error(),
			})
		}
		return nil, err
	}

	return toMemoryResponse(memory), nil
}

func (s *MemoryService) Query(ctx context.Context, userId uuid.UUID, req dto.QueryMemoriesRequest) ([]dto.MemoryQueryResult, error) {
	resp, err := s.embedder.Generate(req.Query, "retrieval_query")
	if err != nil {
		return nil, err
	}

	filter := map[string]string{"user_id": userId.String()}
	if req.Type != "" {
		filter["type"] = req.Type
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultMemoryQueryLimit
	}

	matches, err := s.store.Search(ctx, s.collection, resp.Embedding.Values, filter, limit)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	results := make([]dto.MemoryQueryResult, 0, len(matches))
	for _, match := range matches {
		idValue, _ := match.Document.Payload["memory_id"].(string)
		memoryId, err := uuid.Parse(idValue)
		if err != nil {
			continue
		}

		memory, err := uow.MemoryRepository().FindOne(ctx, specification.ByID{ID: memoryId})
		if err != nil {
			return nil, err
		}
		if memory == nil {
			continue
		}

		// Retrieval counts as use; recently used memories survive the
		// forgetting pass.
		if err := uow.MemoryRepository().TouchLastAccessed(ctx, memoryId, now); err != nil {
			s.logger.Warn("memory", "failed to touch memory", map[string]interface{}{
				"memory_id": memoryId.String(),
				"error":     err.Error(),
			})
		}
		memory.LastAccessed = now

		if err := uow.MemoryRepository().AddImportance(ctx, memoryId, queryImportanceBoost); err != nil {
			s.logger.Warn("memory", "failed to reinforce memory importance", map[string]interface{}{
				"memory_id": memoryId.String(),
				"error":     err.Error(),
			})
		} else {
			memory.ImportanceScore += queryImportanceBoost
		}

		results = append(results, dto.MemoryQueryResult{
			Memory: *toMemoryResponse(memory),
			Score:  match.Score,
		})
	}
	return results, nil
}

// Forget deletes memories that are both stale and unimportant. Recent
// or high importance memories are kept regardless of the other signal.
func (s *MemoryService) Forget(ctx context.Context, userId uuid.UUID, req dto.ForgetMemoriesRequest) (*dto.ForgetMemoriesResponse, error) {
	thresholdDays := req.ThresholdDays
	if thresholdDays <= 0 {
		thresholdDays = defaultForgetThresholdDays
	}
	importanceThreshold := req.ImportanceThreshold
	if importanceThreshold <= 0 {
		importanceThreshold = defaultForgetImportance
	}

	cutoff := time.Now().AddDate(0, 0, -thresholdDays)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stale, err := uow.MemoryRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.LastAccessedBefore{Cutoff: cutoff},
		specification.ImportanceBelow{Threshold: importanceThreshold},
	)
	if err != nil {
		return nil, err
	}

	forgotten := 0
	for _, memory := range stale {
		if err := uow.MemoryRepository().Delete(ctx, memory.Id); err != nil {
			return nil, err
		}
		err := s.store.Delete(ctx, s.collection, map[string]string{
			"memory_id": memory.Id.String(),
		})
		if err != nil {
			s.logger.Warn("memory", "failed to delete memory vector", map[string]interface{}{
				"memory_id": memory.Id.String(),
				"error":     err.Error(),
			})
		}
		forgotten++
	}

	s.logger.Info("memory", "forget pass completed", map[string]interface{}{
		"user_id":   userId.String(),
		"forgotten": forgotten,
	})
	return &dto.ForgetMemoriesResponse{Forgotten: forgotten}, nil
}

func toMemoryResponse(memory *entity.Memory) *dto.MemoryResponse {
	return &dto.MemoryResponse{
		Id:              memory.Id,
		Type:            string(memory.Type),
		Content:         memory.Content,
		Metadata:        memory.Metadata,
		ImportanceScore: memory.ImportanceScore,
		LastAccessed:    memory.LastAccessed,
		CreatedAt:       memory.CreatedAt,
	}
}
