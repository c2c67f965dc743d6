package service

import (
	"context"
	"time"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/agent"
	"medassist-be/pkg/events"
	"medassist-be/pkg/llm"

	"github.com/google/uuid"
)

const defaultConversationTitle = "New conversation"

// ChatEngine is one turn's reasoning pipeline, already bound to the
// user and the conversation history.
type ChatEngine interface {
	Chat(ctx context.Context) (*agent.Result, error)
	StreamChat(ctx context.Context) (<-chan string, <-chan error)
}

// EngineFactory builds a ChatEngine per request.
type EngineFactory interface {
	NewEngine(ctx context.Context, userId uuid.UUID, history []llm.Message) (ChatEngine, error)
}

// StreamEvent is one item of a streaming chat turn. Exactly one of the
// fields is meaningful: a token, a terminal error, or the done marker.
type StreamEvent struct {
	Token string
	Err   error
	Done  bool
}

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error)
	ListConversations(ctx context.Context, userId uuid.UUID) ([]dto.ConversationResponse, error)
	GetConversation(ctx context.Context, userId, conversationId uuid.UUID) (*dto.ConversationDetailResponse, error)
	RenameConversation(ctx context.Context, userId, conversationId uuid.UUID, title string) (*dto.ConversationResponse, error)
	DeleteConversation(ctx context.Context, userId, conversationId uuid.UUID) error
	SendChat(ctx context.Context, userId, conversationId uuid.UUID, message string) (*dto.ChatResponse, error)
	StreamChat(ctx context.Context, userId, conversationId uuid.UUID, message string) (<-chan StreamEvent, error)
}

type ChatService struct {
	uowFactory    unitofwork.RepositoryFactory
	engineFactory EngineFactory
	publisher     EventPublisher
	logger        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	engineFactory EngineFactory,
	publisher EventPublisher,
	log logger.ILogger,
) IChatService {
	return &ChatService{
		uowFactory:    uowFactory,
		engineFactory: engineFactory,
		publisher:     publisher,
		logger:        log,
	}
}

func (s *ChatService) CreateConversation(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation := &entity.Conversation{
		UserId: userId,
		Title:  defaultConversationTitle,
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	return toConversationResponse(conversation), nil
}

func (s *ChatService) ListConversations(ctx context.Context, userId uuid.UUID) ([]dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderByCreatedAtDesc{},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		responses = append(responses, *toConversationResponse(conversation))
	}
	return responses, nil
}

func (s *ChatService) GetConversation(ctx context.Context, userId, conversationId uuid.UUID) (*dto.ConversationDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.loadOwnedConversation(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderByCreatedAtAsc{},
	)
	if err != nil {
		return nil, err
	}

	messageResponses := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		subProcesses, err := uow.MessageSubProcessRepository().FindAll(ctx,
			specification.ByMessageID{MessageID: message.Id},
			specification.OrderByCreatedAtAsc{},
		)
		if err != nil {
			return nil, err
		}

		subResponses := make([]dto.MessageSubProcessResponse, 0, len(subProcesses))
		for _, sub := range subProcesses {
			subResponses = append(subResponses, dto.MessageSubProcessResponse{
				Id:       sub.Id,
				Status:   string(sub.Status),
				Metadata: sub.Metadata,
			})
		}

		messageResponses = append(messageResponses, dto.MessageResponse{
			Id:           message.Id,
			Role:         string(message.Role),
			Content:      message.Content,
			Status:       string(message.Status),
			CreatedAt:    message.CreatedAt,
			SubProcesses: subResponses,
		})
	}

	return &dto.ConversationDetailResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		Messages:  messageResponses,
	}, nil
}

func (s *ChatService) RenameConversation(ctx context.Context, userId, conversationId uuid.UUID, title string) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.loadOwnedConversation(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	conversation.Title = title
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}
	return toConversationResponse(conversation), nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userId, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.loadOwnedConversation(ctx, uow, userId, conversationId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ConversationDocumentRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}

// SendChat runs one complete turn. Nothing is persisted until the
// engine returns; the user and assistant messages then land in one
// transaction.
func (s *ChatService) SendChat(ctx context.Context, userId, conversationId uuid.UUID, message string) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.loadOwnedConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, uow, conversationId)
	if err != nil {
		return nil, err
	}
	history = append(history, llm.Message{Role: "user", Content: message})

	engine, err := s.engineFactory.NewEngine(ctx, userId, history)
	if err != nil {
		return nil, err
	}

	result, err := engine.Chat(ctx)
	if err != nil {
		s.logger.Error("chat", "engine failed", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return nil, err
	}

	assistantMessage, err := s.persistTurn(ctx, uow, conversationId, message, result)
	if err != nil {
		return nil, err
	}

	s.publishTurnCompleted(ctx, conversationId, assistantMessage.Id)

	return &dto.ChatResponse{
		ConversationId: conversationId,
		Response:       result.Answer,
	}, nil
}

// StreamChat pre-commits the user message and a pending assistant
// placeholder before the first token is read, then streams. On success
// the placeholder receives the full text; on error its status flips to
// ERROR and the partial text is discarded.
func (s *ChatService) StreamChat(ctx context.Context, userId, conversationId uuid.UUID, message string) (<-chan StreamEvent, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.loadOwnedConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, uow, conversationId)
	if err != nil {
		return nil, err
	}
	history = append(history, llm.Message{Role: "user", Content: message})

	engine, err := s.engineFactory.NewEngine(ctx, userId, history)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := &entity.Message{
		ConversationId: conversationId,
		Role:           entity.MessageRoleUser,
		Content:        message,
		Status:         entity.MessageStatusSuccess,
		CreatedAt:      now,
	}
	assistantMessage := &entity.Message{
		ConversationId: conversationId,
		Role:           entity.MessageRoleAssistant,
		Content:        "",
		Status:         entity.MessageStatusPending,
		CreatedAt:      now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	tokens, errs := engine.StreamChat(ctx)
	out := make(chan StreamEvent)

	go func() {
		defer close(out)

		var full []byte
		for token := range tokens {
			full = append(full, token...)
			out <- StreamEvent{Token: token}
		}

		if err := <-errs; err != nil {
			// Keep the placeholder empty; partial output is discarded.
			s.finishAssistantMessage(assistantMessage, "", entity.MessageStatusError)
			s.logger.Error("chat", "stream failed", map[string]interface{}{
				"conversation_id": conversationId.String(),
				"error":           err.Error(),
			})
			out <- StreamEvent{Err: err}
			return
		}

		s.finishAssistantMessage(assistantMessage, string(full), entity.MessageStatusSuccess)
		s.publishTurnCompleted(context.Background(), conversationId, assistantMessage.Id)
		out <- StreamEvent{Done: true}
	}()

	return out, nil
}

// finishAssistantMessage records the terminal state of a pre-committed
// placeholder. A fresh unit of work on a background context keeps the
// write alive even if the client disconnected mid-stream.
func (s *ChatService) finishAssistantMessage(message *entity.Message, content string, status entity.MessageStatus) {
	ctx := context.Background()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message.Content = content
	message.Status = status
	if err := uow.MessageRepository().Update(ctx, message); err != nil {
		s.logger.Error("chat", "failed to finalize assistant message", map[string]interface{}{
			"message_id": message.Id.String(),
			"error":      err.Error(),
		})
	}
}

func (s *ChatService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID, userContent string, result *agent.Result) (*entity.Message, error) {
	now := time.Now()
	userMessage := &entity.Message{
		ConversationId: conversationId,
		Role:           entity.MessageRoleUser,
		Content:        userContent,
		Status:         entity.MessageStatusSuccess,
		CreatedAt:      now,
	}
	// Created one tick later so ordering by created_at is stable.
	assistantMessage := &entity.Message{
		ConversationId: conversationId,
		Role:           entity.MessageRoleAssistant,
		Content:        result.Answer,
		Status:         entity.MessageStatusSuccess,
		CreatedAt:      now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		uow.Rollback()
		return nil, err
	}
	for _, step := range result.Steps {
		subProcess := &entity.MessageSubProcess{
			MessageId: assistantMessage.Id,
			Status:    entity.SubProcessStatusFinished,
			Metadata: map[string]interface{}{
				"tool":        step.Tool,
				"input":       step.Input,
				"observation": step.Observation,
			},
		}
		if err := uow.MessageSubProcessRepository().Create(ctx, subProcess); err != nil {
			uow.Rollback()
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return assistantMessage, nil
}

func (s *ChatService) loadOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId uuid.UUID) (*entity.Conversation, error) {
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
	return conversation, nil
}

// loadHistory returns the completed messages of a conversation as
// prompt history. Pending or failed messages never reach the model.
func (s *ChatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderByCreatedAtAsc{},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for _, message := range messages {
		if message.Status != entity.MessageStatusSuccess || message.Content == "" {
			continue
		}
		history = append(history, llm.Message{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}
	return history, nil
}

func (s *ChatService) publishTurnCompleted(ctx context.Context, conversationId, messageId uuid.UUID) {
	err := s.publisher.Publish(ctx, events.BaseEvent{
		Type: "CHAT_TURN_COMPLETED",
		Data: map[string]interface{}{
			"conversation_id": conversationId.String(),
			"message_id":      messageId.String(),
		},
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.logger.Warn("chat", "failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

func toConversationResponse(conversation *entity.Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}
}
