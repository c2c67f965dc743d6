package service

import (
	"context"
	"errors"
	"testing"

	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/pkg/agent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(conversation *entity.Conversation) (*mockUow, *mockEngineFactory, *mockPublisher, IChatService) {
	uow := &mockUow{
		conversations: &mockConversationRepo{
			FindOneFunc: func(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
				return conversation, nil
			},
		},
		messages: &mockMessageRepo{
			FindAllFunc: func(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
				return nil, nil
			},
		},
		subProcesses: &mockSubProcessRepo{},
	}
	engineFactory := &mockEngineFactory{engine: &mockEngine{}}
	publisher := &mockPublisher{}
	svc := NewChatService(&mockUowFactory{uow: uow}, engineFactory, publisher, noopLogger{})
	return uow, engineFactory, publisher, svc
}

func TestCreateConversation_DefaultTitle(t *testing.T) {
	userId := uuid.New()
	var created *entity.Conversation
	uow := &mockUow{
		conversations: &mockConversationRepo{
			CreateFunc: func(ctx context.Context, c *entity.Conversation) error {
				c.Id = uuid.New()
				created = c
				return nil
			},
		},
	}
	svc := NewChatService(&mockUowFactory{uow: uow}, &mockEngineFactory{}, &mockPublisher{}, noopLogger{})

	response, err := svc.CreateConversation(context.Background(), userId)

	require.NoError(t, err)
	assert.Equal(t, "New conversation", response.Title)
	assert.Equal(t, userId, created.UserId)
}

func TestSendChat_PersistsTurnAtomically(t *testing.T) {
	userId := uuid.New()
	conversation := &entity.Conversation{Id: uuid.New(), UserId: userId}
	uow, engineFactory, publisher, svc := newChatFixture(conversation)

	var saved []*entity.Message
	uow.messages.CreateFunc = func(ctx context.Context, msg *entity.Message) error {
		require.Equal(t, 1, uow.begins, "messages must be created inside the transaction")
		msg.Id = uuid.New()
		saved = append(saved, msg)
		return nil
	}
	var subProcesses []*entity.MessageSubProcess
	uow.subProcesses.CreateFunc = func(ctx context.Context, sp *entity.MessageSubProcess) error {
		subProcesses = append(subProcesses, sp)
		return nil
	}
	engineFactory.engine.ChatFunc = func(ctx context.Context) (*agent.Result, error) {
		return &agent.Result{
			Answer: "final answer",
			Steps: []agent.ToolCall{
				{Tool: "pubmed_engine", Input: "q", Observation: "obs"},
			},
		}, nil
	}

	response, err := svc.SendChat(context.Background(), userId, conversation.Id, "hello")

	require.NoError(t, err)
	assert.Equal(t, "final answer", response.Response)

	require.Len(t, saved, 2)
	assert.Equal(t, entity.MessageRoleUser, saved[0].Role)
	assert.Equal(t, "hello", saved[0].Content)
	assert.Equal(t, entity.MessageStatusSuccess, saved[0].Status)
	assert.Equal(t, entity.MessageRoleAssistant, saved[1].Role)
	assert.Equal(t, "final answer", saved[1].Content)
	assert.Equal(t, entity.MessageStatusSuccess, saved[1].Status)
	assert.True(t, saved[1].CreatedAt.After(saved[0].CreatedAt))

	require.Len(t, subProcesses, 1)
	assert.Equal(t, entity.SubProcessStatusFinished, subProcesses[0].Status)
	assert.Equal(t, "pubmed_engine", subProcesses[0].Metadata["tool"])

	assert.Equal(t, 1, uow.commits)
	assert.Equal(t, 0, uow.rollbacks)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "CHAT_TURN_COMPLETED", publisher.published[0].EventType())
}

func TestSendChat_EngineFailurePersistsNothing(t *testing.T) {
	userId := uuid.New()
	conversation := &entity.Conversation{Id: uuid.New(), UserId: userId}
	uow, engineFactory, _, svc := newChatFixture(conversation)

	uow.messages.CreateFunc = func(ctx context.Context, msg *entity.Message) error {
		t.Fatal("nothing may be persisted when the engine fails")
		return nil
	}
	engineFactory.engine.ChatFunc = func(ctx context.Context) (*agent.Result, error) {
		return nil, errors.New("model unavailable")
	}

	_, err := svc.SendChat(context.Background(), userId, conversation.Id, "hello")

	require.Error(t, err)
	assert.Equal(t, 0, uow.begins)
}

func TestSendChat_OtherUsersConversation(t *testing.T) {
	conversation := &entity.Conversation{Id: uuid.New(), UserId: uuid.New()}
	uow, engineFactory, _, svc := newChatFixture(conversation)

	uow.messages.CreateFunc = func(ctx context.Context, msg *entity.Message) error {
		t.Fatal("no messages may be written for a foreign conversation")
		return nil
	}
	engineFactory.engine.ChatFunc = func(ctx context.Context) (*agent.Result, error) {
		t.Fatal("the engine must not run for a foreign conversation")
		return nil, nil
	}

	_, err := svc.SendChat(context.Background(), uuid.New(), conversation.Id, "hello")

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Equal(t, 0, engineFactory.calls+uow.begins)
}

func TestSendChat_MissingConversation(t *testing.T) {
	_, _, _, svc := newChatFixture(nil)

	_, err := svc.SendChat(context.Background(), uuid.New(), uuid.New(), "hello")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreamChat_PreCommitsBeforeTokens(t *testing.T) {
	userId := uuid.New()
	conversation := &entity.Conversation{Id: uuid.New(), UserId: userId}
	uow, engineFactory, _, svc := newChatFixture(conversation)

	var created []*entity.Message
	uow.messages.CreateFunc = func(ctx context.Context, msg *entity.Message) error {
		msg.Id = uuid.New()
		created = append(created, msg)
		return nil
	}
	var updated *entity.Message
	uow.messages.UpdateFunc = func(ctx context.Context, msg *entity.Message) error {
		copied := *msg
		updated = &copied
		return nil
	}
	engineFactory.engine.StreamChatFunc = func(ctx context.Context) (<-chan string, <-chan error) {
		return successStream("Hel", "lo!")
	}

	eventsChan, err := svc.StreamChat(context.Background(), userId, conversation.Id, "hi")
	require.NoError(t, err)

	// Both rows are committed before any token is consumed.
	require.Len(t, created, 2)
	assert.Equal(t, entity.MessageStatusSuccess, created[0].Status)
	assert.Equal(t, "hi", created[0].Content)
	assert.Equal(t, entity.MessageStatusPending, created[1].Status)
	assert.Equal(t, "", created[1].Content)
	assert.Equal(t, 1, uow.commits)

	var tokens []string
	var done bool
	for event := range eventsChan {
		switch {
		case event.Err != nil:
			t.Fatalf("unexpected stream error: %v", event.Err)
		case event.Done:
			done = true
		default:
			tokens = append(tokens, event.Token)
		}
	}

	assert.True(t, done)
	assert.Equal(t, []string{"Hel", "lo!"}, tokens)
	require.NotNil(t, updated)
	assert.Equal(t, "Hello!", updated.Content)
	assert.Equal(t, entity.MessageStatusSuccess, updated.Status)
}

func TestStreamChat_ErrorDiscardsPartialText(t *testing.T) {
	userId := uuid.New()
	conversation := &entity.Conversation{Id: uuid.New(), UserId: userId}
	uow, engineFactory, _, svc := newChatFixture(conversation)

	uow.messages.CreateFunc = func(ctx context.Context, msg *entity.Message) error {
		msg.Id = uuid.New()
		return nil
	}
	var updated *entity.Message
	uow.messages.UpdateFunc = func(ctx context.Context, msg *entity.Message) error {
		copied := *msg
		updated = &copied
		return nil
	}
	engineFactory.engine.StreamChatFunc = func(ctx context.Context) (<-chan string, <-chan error) {
		return failingStream([]string{"partial "}, errors.New("stream broke"))
	}

	eventsChan, err := svc.StreamChat(context.Background(), userId, conversation.Id, "hi")
	require.NoError(t, err)

	var streamErr error
	for event := range eventsChan {
		if event.Err != nil {
			streamErr = event.Err
		}
	}

	require.Error(t, streamErr)
	require.NotNil(t, updated)
	assert.Equal(t, entity.MessageStatusError, updated.Status)
	assert.Equal(t, "", updated.Content, "partial output must be discarded")
}
