package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"medassist-be/internal/config"
	"medassist-be/internal/controller"
	"medassist-be/internal/model"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/pkg/mailer"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/internal/service"
	"medassist-be/pkg/chat"
	"medassist-be/pkg/embedding"
	"medassist-be/pkg/llm"
	llmfactory "medassist-be/pkg/llm/factory"
	natspkg "medassist-be/pkg/nats"
	"medassist-be/pkg/prompt"
	"medassist-be/pkg/pubmed"
	"medassist-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container wires every dependency of the application.
type Container struct {
	Logger      logger.ILogger
	VectorStore vectorstore.Service
	Publisher   *natspkg.Publisher

	IngestConsumer *service.IngestConsumerService

	JwtMiddleware fiber.Handler

	AuthController          *controller.AuthController
	ChatController          *controller.ChatController
	MedicalRecordController *controller.MedicalRecordController
	DocumentController      *controller.DocumentController
	MemoryController        *controller.MemoryController
}

func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	isProd := cfg.App.Environment == "production"
	zapLogger := logger.NewZapLogger(cfg.App.LogFilePath, isProd)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)

	natsPublisher, err := natspkg.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	var redisClient *redis.Client
	if opts, err := redis.ParseURL(cfg.App.RedisURL); err == nil {
		redisClient = redis.NewClient(opts)
	} else {
		log.Printf("Warn: invalid REDIS_URL, PubMed cache disabled: %v", err)
	}

	// In-process queue for background record ingestion.
	queue := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewStdLogger(false, false))

	embedder, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}

	llmProvider, err := llmfactory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, cfg.Ai.GeminiApiKey)
	if err != nil {
		return nil, err
	}

	vectorStore := vectorstore.NewPgVectorService(db, cfg.Vector.EmbeddingDim)

	promptRegistry, err := prompt.Load(cfg.App.PromptDir)
	if err != nil {
		return nil, err
	}

	pubmedTool := pubmed.NewTool(
		pubmed.NewClient(cfg.PubMed.BaseURL, cfg.PubMed.MaxResults),
		redisClient,
		time.Duration(cfg.PubMed.CacheTTLSeconds)*time.Second,
	)

	accessor := chat.NewIndexAccessor(vectorStore, embedder, chat.DefaultIndexTTL)
	chatFactory := chat.NewFactory(llmProvider, promptRegistry, accessor, pubmedTool, chat.AccessorConfig{
		Collection: cfg.Vector.RecordCollection,
		Dim:        cfg.Vector.EmbeddingDim,
		TopK:       cfg.Ai.TopK,
	})

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password,
		cfg.SMTP.Email, cfg.App.ClientURL,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPublisher, zapLogger, cfg.Auth.JwtSecret, cfg.Auth.AccessTokenExpireMinutes)
	chatService := service.NewChatService(uowFactory, engineFactoryAdapter{chatFactory}, natsPublisher, zapLogger)
	recordService := service.NewMedicalRecordService(uowFactory, queue, cfg.App.IngestTopic, zapLogger)
	documentService := service.NewDocumentService(uowFactory)
	memoryService := service.NewMemoryService(uowFactory, vectorStore, embedder, cfg.Vector.MemoryCollection, zapLogger)

	ingestConsumer := service.NewIngestConsumerService(
		uowFactory, queue, cfg.App.IngestTopic,
		embedder, vectorStore, cfg.Vector.RecordCollection,
		natsPublisher, zapLogger,
	)

	return &Container{
		Logger:      zapLogger,
		VectorStore: vectorStore,
		Publisher:   natsPublisher,

		IngestConsumer: ingestConsumer,

		JwtMiddleware: serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, uowFactory),

		AuthController:          controller.NewAuthController(authService),
		ChatController:          controller.NewChatController(chatService),
		MedicalRecordController: controller.NewMedicalRecordController(recordService),
		DocumentController:      controller.NewDocumentController(documentService),
		MemoryController:        controller.NewMemoryController(memoryService),
	}, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.MessageSubProcess{},
		&model.Document{},
		&model.ConversationDocument{},
		&model.MedicalRecord{},
		&model.Memory{},
	)
}

func newEmbeddingProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// engineFactoryAdapter narrows the chat factory to the interface the
// chat service consumes.
type engineFactoryAdapter struct {
	factory *chat.Factory
}

func (a engineFactoryAdapter) NewEngine(ctx context.Context, userId uuid.UUID, history []llm.Message) (service.ChatEngine, error) {
	engine, err := a.factory.NewEngine(ctx, userId, history)
	if err != nil {
		return nil, err
	}
	return engine, nil
}
