package service

import (
	"context"
	"time"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/contract"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/agent"
	"medassist-be/pkg/embedding"
	"medassist-be/pkg/events"
	"medassist-be/pkg/llm"
	"medassist-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// func-field mocks; tests set only what they exercise.

type mockConversationRepo struct {
	CreateFunc  func(ctx context.Context, conversation *entity.Conversation) error
	UpdateFunc  func(ctx context.Context, conversation *entity.Conversation) error
	DeleteFunc  func(ctx context.Context, id uuid.UUID) error
	FindOneFunc func(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAllFunc func(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	CountFunc   func(ctx context.Context, specs ...specification.Specification) (int64, error)
}

func (m *mockConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	return m.CreateFunc(ctx, c)
}
func (m *mockConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	return m.UpdateFunc(ctx, c)
}
func (m *mockConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	return m.FindOneFunc(ctx, specs...)
}
func (m *mockConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	return m.FindAllFunc(ctx, specs...)
}
func (m *mockConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return m.CountFunc(ctx, specs...)
}

type mockMessageRepo struct {
	CreateFunc                 func(ctx context.Context, message *entity.Message) error
	UpdateFunc                 func(ctx context.Context, message *entity.Message) error
	DeleteFunc                 func(ctx context.Context, id uuid.UUID) error
	DeleteByConversationIdFunc func(ctx context.Context, conversationId uuid.UUID) error
	FindOneFunc                func(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAllFunc                func(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	CountFunc                  func(ctx context.Context, specs ...specification.Specification) (int64, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	return m.CreateFunc(ctx, msg)
}
func (m *mockMessageRepo) Update(ctx context.Context, msg *entity.Message) error {
	return m.UpdateFunc(ctx, msg)
}
func (m *mockMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockMessageRepo) DeleteByConversationId(ctx context.Context, id uuid.UUID) error {
	return m.DeleteByConversationIdFunc(ctx, id)
}
func (m *mockMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	return m.FindOneFunc(ctx, specs...)
}
func (m *mockMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return m.FindAllFunc(ctx, specs...)
}
func (m *mockMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return m.CountFunc(ctx, specs...)
}

type mockSubProcessRepo struct {
	CreateFunc            func(ctx context.Context, subProcess *entity.MessageSubProcess) error
	FindAllFunc           func(ctx context.Context, specs ...specification.Specification) ([]*entity.MessageSubProcess, error)
	DeleteByMessageIdFunc func(ctx context.Context, messageId uuid.UUID) error
}

func (m *mockSubProcessRepo) Create(ctx context.Context, sp *entity.MessageSubProcess) error {
	return m.CreateFunc(ctx, sp)
}
func (m *mockSubProcessRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MessageSubProcess, error) {
	return m.FindAllFunc(ctx, specs...)
}
func (m *mockSubProcessRepo) DeleteByMessageId(ctx context.Context, id uuid.UUID) error {
	return m.DeleteByMessageIdFunc(ctx, id)
}

type mockMemoryRepo struct {
	CreateFunc            func(ctx context.Context, memory *entity.Memory) error
	DeleteFunc            func(ctx context.Context, id uuid.UUID) error
	FindOneFunc           func(ctx context.Context, specs ...specification.Specification) (*entity.Memory, error)
	FindAllFunc           func(ctx context.Context, specs ...specification.Specification) ([]*entity.Memory, error)
	TouchLastAccessedFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
	AddImportanceFunc     func(ctx context.Context, id uuid.UUID, delta float64) error
}

func (m *mockMemoryRepo) Create(ctx context.Context, memory *entity.Memory) error {
	return m.CreateFunc(ctx, memory)
}
func (m *mockMemoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
func (m *mockMemoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Memory, error) {
	return m.FindOneFunc(ctx, specs...)
}
func (m *mockMemoryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Memory, error) {
	return m.FindAllFunc(ctx, specs...)
}
func (m *mockMemoryRepo) TouchLastAccessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.TouchLastAccessedFunc(ctx, id, at)
}
func (m *mockMemoryRepo) AddImportance(ctx context.Context, id uuid.UUID, delta float64) error {
	return m.AddImportanceFunc(ctx, id, delta)
}

// mockUow satisfies unitofwork.UnitOfWork with pluggable repos. Begin,
// Commit and Rollback count calls so tests can assert transaction use.
type mockUow struct {
	conversations *mockConversationRepo
	messages      *mockMessageRepo
	subProcesses  *mockSubProcessRepo
	memories      *mockMemoryRepo

	begins    int
	commits   int
	rollbacks int
}

func (m *mockUow) Begin(ctx context.Context) error { m.begins++; return nil }
func (m *mockUow) Commit() error                   { m.commits++; return nil }
func (m *mockUow) Rollback() error                 { m.rollbacks++; return nil }

func (m *mockUow) UserRepository() contract.UserRepository { return nil }
func (m *mockUow) ConversationRepository() contract.ConversationRepository {
	return m.conversations
}
func (m *mockUow) MessageRepository() contract.MessageRepository { return m.messages }
func (m *mockUow) MessageSubProcessRepository() contract.MessageSubProcessRepository {
	return m.subProcesses
}
func (m *mockUow) DocumentRepository() contract.DocumentRepository { return nil }
func (m *mockUow) ConversationDocumentRepository() contract.ConversationDocumentRepository {
	return nil
}
func (m *mockUow) MedicalRecordRepository() contract.MedicalRecordRepository { return nil }
func (m *mockUow) MemoryRepository() contract.MemoryRepository               { return m.memories }

type mockUowFactory struct {
	uow *mockUow
}

func (f *mockUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type mockEngine struct {
	ChatFunc       func(ctx context.Context) (*agent.Result, error)
	StreamChatFunc func(ctx context.Context) (<-chan string, <-chan error)
}

func (m *mockEngine) Chat(ctx context.Context) (*agent.Result, error) {
	return m.ChatFunc(ctx)
}
func (m *mockEngine) StreamChat(ctx context.Context) (<-chan string, <-chan error) {
	return m.StreamChatFunc(ctx)
}

type mockEngineFactory struct {
	engine  *mockEngine
	history []llm.Message
	calls   int
}

func (f *mockEngineFactory) NewEngine(ctx context.Context, userId uuid.UUID, history []llm.Message) (ChatEngine, error) {
	f.calls++
	f.history = history
	return f.engine, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

// helpers

func successStream(tokens ...string) (<-chan string, <-chan error) {
	tokenChan := make(chan string, len(tokens))
	errChan := make(chan error, 1)
	for _, token := range tokens {
		tokenChan <- token
	}
	close(tokenChan)
	close(errChan)
	return tokenChan, errChan
}

func failingStream(partial []string, err error) (<-chan string, <-chan error) {
	tokenChan := make(chan string, len(partial))
	errChan := make(chan error, 1)
	for _, token := range partial {
		tokenChan <- token
	}
	close(tokenChan)
	errChan <- err
	close(errChan)
	return tokenChan, errChan
}

// fakes for the memory service

type fakeVectorStore struct {
	upserts     [][]vectorstore.Document
	deletes     []map[string]string
	matches     []vectorstore.Match
	upsertErr   error
	searchCalls int
}

func (f *fakeVectorStore) Init(ctx context.Context) error { return nil }
func (f *fakeVectorStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	return nil
}
func (f *fakeVectorStore) Upsert(ctx context.Context, collection string, docs []vectorstore.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, docs)
	return nil
}
func (f *fakeVectorStore) Search(ctx context.Context, collection string, vector []float32, filter map[string]string, k int) ([]vectorstore.Match, error) {
	f.searchCalls++
	return f.matches, nil
}
func (f *fakeVectorStore) Delete(ctx context.Context, collection string, filter map[string]string) error {
	f.deletes = append(f.deletes, filter)
	return nil
}
func (f *fakeVectorStore) Count(ctx context.Context, collection string) (int64, error) {
	return 0, nil
}
func (f *fakeVectorStore) Close() error { return nil }

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, taskType string) (*embedding.Response, error) {
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: []float32{0.5, 0.5}}}, nil
}
