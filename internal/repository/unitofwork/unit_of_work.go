package unitofwork

import (
	"context"

	"medassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	MessageSubProcessRepository() contract.MessageSubProcessRepository
	DocumentRepository() contract.DocumentRepository
	ConversationDocumentRepository() contract.ConversationDocumentRepository
	MedicalRecordRepository() contract.MedicalRecordRepository
	MemoryRepository() contract.MemoryRepository
}
