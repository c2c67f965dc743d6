package service

import (
	"context"
	"testing"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMemory_StoresRowAndVector(t *testing.T) {
	userId := uuid.New()
	store := &fakeVectorStore{}
	var createdRow *entity.Memory
	uow := &mockUow{
		memories: &mockMemoryRepo{
			CreateFunc: func(ctx context.Context, memory *entity.Memory) error {
				memory.Id = uuid.New()
				createdRow = memory
				return nil
			},
		},
	}
	svc := NewMemoryService(&mockUowFactory{uow: uow}, store, fakeEmbedder{}, "memories", noopLogger{})

	response, err := svc.Add(context.Background(), userId, dto.AddMemoryRequest{
		Type:            "semantic",
		Content:         map[string]interface{}{"fact": "allergic to penicillin"},
		ImportanceScore: 0.9,
	})

	require.NoError(t, err)
	assert.Equal(t, "semantic", response.Type)
	require.NotNil(t, createdRow)
	require.Len(t, store.upserts, 1)

	doc := store.upserts[0][0]
	assert.Equal(t, createdRow.Id.String(), doc.Payload["memory_id"])
	assert.Equal(t, userId.String(), doc.Payload["user_id"])
	assert.Equal(t, "semantic", doc.Payload["type"])
}

func TestAddMemory_VectorFailureUndoesRow(t *testing.T) {
	store := &fakeVectorStore{upsertErr: assert.AnError}
	var deleted []uuid.UUID
	uow := &mockUow{
		memories: &mockMemoryRepo{
			CreateFunc: func(ctx context.Context, memory *entity.Memory) error {
				memory.Id = uuid.New()
				return nil
			},
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = append(deleted, id)
				return nil
			},
		},
	}
	svc := NewMemoryService(&mockUowFactory{uow: uow}, store, fakeEmbedder{}, "memories", noopLogger{})

	_, err := svc.Add(context.Background(), uuid.New(), dto.AddMemoryRequest{
		Type:    "episodic",
		Content: map[string]interface{}{"event": "visited cardiologist"},
	})

	require.Error(t, err)
	assert.Len(t, deleted, 1)
}

func TestQueryMemories_TouchesLastAccessed(t *testing.T) {
	memoryId := uuid.New()
	store := &fakeVectorStore{
		matches: []vectorstore.Match{
			{
				Document: vectorstore.Document{Payload: map[string]interface{}{"memory_id": memoryId.String()}},
				Score:    0.87,
			},
		},
	}
	var touched []uuid.UUID
	var boosts []float64
	uow := &mockUow{
		memories: &mockMemoryRepo{
			FindOneFunc: func(ctx context.Context, specs ...specification.Specification) (*entity.Memory, error) {
				return &entity.Memory{Id: memoryId, Type: entity.MemoryTypeSemantic, ImportanceScore: 0.4}, nil
			},
			TouchLastAccessedFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
				touched = append(touched, id)
				return nil
			},
			AddImportanceFunc: func(ctx context.Context, id uuid.UUID, delta float64) error {
				require.Equal(t, memoryId, id)
				boosts = append(boosts, delta)
				return nil
			},
		},
	}
	svc := NewMemoryService(&mockUowFactory{uow: uow}, store, fakeEmbedder{}, "memories", noopLogger{})

	results, err := svc.Query(context.Background(), uuid.New(), dto.QueryMemoriesRequest{Query: "allergies"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.87, results[0].Score)
	assert.Equal(t, []uuid.UUID{memoryId}, touched)

	// Each retrieval reinforces the memory against decay.
	require.Len(t, boosts, 1)
	assert.InDelta(t, 0.1, boosts[0], 1e-9)
	assert.InDelta(t, 0.5, results[0].Memory.ImportanceScore, 1e-9)
}

func TestQueryMemories_ReinforcementFailureIsNonFatal(t *testing.T) {
	memoryId := uuid.New()
	store := &fakeVectorStore{
		matches: []vectorstore.Match{
			{
				Document: vectorstore.Document{Payload: map[string]interface{}{"memory_id": memoryId.String()}},
				Score:    0.5,
			},
		},
	}
	uow := &mockUow{
		memories: &mockMemoryRepo{
			FindOneFunc: func(ctx context.Context, specs ...specification.Specification) (*entity.Memory, error) {
				return &entity.Memory{Id: memoryId, Type: entity.MemoryTypeEpisodic, ImportanceScore: 0.4}, nil
			},
			TouchLastAccessedFunc: func(ctx context.Context, id uuid.UUID, at time.Time) error {
				return nil
			},
			AddImportanceFunc: func(ctx context.Context, id uuid.UUID, delta float64) error {
				return assert.AnError
			},
		},
	}
	svc := NewMemoryService(&mockUowFactory{uow: uow}, store, fakeEmbedder{}, "memories", noopLogger{})

	results, err := svc.Query(context.Background(), uuid.New(), dto.QueryMemoriesRequest{Query: "allergies"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	// The stored score is reported unchanged when the boost did not land.
	assert.InDelta(t, 0.4, results[0].Memory.ImportanceScore, 1e-9)
}

func TestForget_DeletesStaleRowsAndVectors(t *testing.T) {
	staleId := uuid.New()
	store := &fakeVectorStore{}
	var deleted []uuid.UUID
	uow := &mockUow{
		memories: &mockMemoryRepo{
			FindAllFunc: func(ctx context.Context, specs ...specification.Specification) ([]*entity.Memory, error) {
				// UserOwnedBy, LastAccessedBefore and ImportanceBelow
				// must all constrain the candidate set.
				require.Len(t, specs, 3)
				return []*entity.Memory{{Id: staleId}}, nil
			},
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = append(deleted, id)
				return nil
			},
		},
	}
	svc := NewMemoryService(&mockUowFactory{uow: uow}, store, fakeEmbedder{}, "memories", noopLogger{})

	result, err := svc.Forget(context.Background(), uuid.New(), dto.ForgetMemoriesRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Forgotten)
	assert.Equal(t, []uuid.UUID{staleId}, deleted)
	require.Len(t, store.deletes, 1)
	assert.Equal(t, staleId.String(), store.deletes[0]["memory_id"])
}
