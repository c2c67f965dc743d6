package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medassist-be/internal/bootstrap"
	"medassist-be/internal/config"
	"medassist-be/internal/server"
	"medassist-be/internal/tracer"
	"medassist-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("Warn: tracer shutdown failed: %v", err)
		}
	}()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	container, err := bootstrap.NewContainer(cfg, db)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Logger.Sync()
	defer container.Publisher.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := container.VectorStore.Init(initCtx); err != nil {
		cancel()
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	for _, collection := range []string{cfg.Vector.RecordCollection, cfg.Vector.MemoryCollection} {
		if err := container.VectorStore.EnsureCollection(initCtx, collection, cfg.Vector.EmbeddingDim); err != nil {
			cancel()
			log.Fatalf("Failed to verify collection %s: %v", collection, err)
		}
	}
	cancel()

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go func() {
		if err := container.IngestConsumer.Start(consumerCtx); err != nil {
			log.Printf("Ingest consumer stopped: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopConsumer()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Warn: server shutdown failed: %v", err)
	}
	if err := container.VectorStore.Close(); err != nil {
		log.Printf("Warn: vector store close failed: %v", err)
	}
}
