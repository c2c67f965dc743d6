package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"medassist-be/internal/config"
	"medassist-be/internal/entity"
	"medassist-be/internal/repository/specification"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/pkg/database"
	"medassist-be/pkg/embedding"
	"medassist-be/pkg/textsplit"
	"medassist-be/pkg/vectorstore"

	"github.com/fatih/color"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// Bulk-loads a directory of medical record files for one user, without
// going through the HTTP API or the queue.
func main() {
	dir := flag.String("dir", "", "directory of record files to ingest")
	email := flag.String("user", "", "email of the owning user")
	flag.Parse()

	if *dir == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := vectorstore.NewPgVectorService(db, cfg.Vector.EmbeddingDim)
	if err := store.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}

	var embedder embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	default:
		embedder = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
	}

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: *email})
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if user == nil {
		color.Red("No user with email %s", *email)
		os.Exit(1)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read directory: %v", err)
	}

	ingested := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*dir, entry.Name())

		content, err := os.ReadFile(path)
		if err != nil {
			color.Yellow("Skipping %s: %v", entry.Name(), err)
			continue
		}

		record := &entity.MedicalRecord{
			UserId:   user.Id,
			FileName: entry.Name(),
			FilePath: path,
		}
		if err := uow.MedicalRecordRepository().Create(ctx, record); err != nil {
			color.Red("Failed to store record for %s: %v", entry.Name(), err)
			continue
		}

		chunks := textsplit.SplitText(string(content), chunkSize, chunkOverlap)
		docs := make([]vectorstore.Document, 0, len(chunks))
		for i, chunk := range chunks {
			resp, err := embedder.Generate(chunk, "retrieval_document")
			if err != nil {
				color.Red("Failed to embed chunk %d of %s: %v", i, entry.Name(), err)
				docs = nil
				break
			}
			docs = append(docs, vectorstore.Document{
				ID:     fmt.Sprintf("%s:%d", record.Id.String(), i),
				Text:   chunk,
				Vector: resp.Embedding.Values,
				Payload: map[string]interface{}{
					"record_id":   record.Id.String(),
					"user_id":     user.Id.String(),
					"file_name":   record.FileName,
					"chunk_index": i,
				},
			})
		}
		if docs == nil {
			continue
		}

		if err := store.Upsert(ctx, cfg.Vector.RecordCollection, docs); err != nil {
			color.Red("Failed to index %s: %v", entry.Name(), err)
			continue
		}

		color.Green("Ingested %s (%d chunks)", entry.Name(), len(chunks))
		ingested++
	}

	color.Cyan("Done: %d file(s) ingested for %s", ingested, *email)
}
