package service

import (
	"context"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	ListForConversation(ctx context.Context, userId, conversationId uuid.UUID) ([]dto.DocumentResponse, error)
}

type DocumentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory) IDocumentService {
	return &DocumentService{uowFactory: uowFactory}
}

// Create stores a document reference, reusing the existing row when the
// URL was seen before, and optionally links it to a conversation.
func (s *DocumentService) Create(ctx context.Context, userId uuid.UUID, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByURL{URL: req.URL})
	if err != nil {
		return nil, err
	}
	if document == nil {
		document = &entity.Document{
			URL:      req.URL,
			Metadata: req.Metadata,
		}
		if err := uow.DocumentRepository().Create(ctx, document); err != nil {
			return nil, err
		}
	}

	if req.ConversationId != nil {
		conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: *req.ConversationId})
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrNotFound
		}
		if conversation.UserId != userId {
			return nil, ErrNotAuthorized
		}

		link := &entity.ConversationDocument{
			ConversationId: conversation.Id,
			DocumentId:     document.Id,
		}
		if err := uow.ConversationDocumentRepository().Create(ctx, link); err != nil {
			return nil, err
		}
	}

	return toDocumentResponse(document), nil
}

func (s *DocumentService) ListForConversation(ctx context.Context, userId, conversationId uuid.UUID) ([]dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if conversation.UserId != userId {
		return nil, ErrNotAuthorized
	}

	links, err := uow.ConversationDocumentRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DocumentResponse, 0, len(links))
	for _, link := range links {
		document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: link.DocumentId})
		if err != nil {
			return nil, err
		}
		if document == nil {
			continue
		}
		responses = append(responses, *toDocumentResponse(document))
	}
	return responses, nil
}

func toDocumentResponse(document *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:        document.Id,
		URL:       document.URL,
		Metadata:  document.Metadata,
		CreatedAt: document.CreatedAt,
	}
}
