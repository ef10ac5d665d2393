package main

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/prajjwal-io/fin-rag-app/cli"
	"github.com/prajjwal-io/fin-rag-app/config"
	"github.com/prajjwal-io/fin-rag-app/document"
	"github.com/prajjwal-io/fin-rag-app/events"
	"github.com/prajjwal-io/fin-rag-app/logging"
	"github.com/prajjwal-io/fin-rag-app/providers"
	"github.com/prajjwal-io/fin-rag-app/rag"
	"github.com/prajjwal-io/fin-rag-app/research"
	"github.com/prajjwal-io/fin-rag-app/vector"
)

func init() {
	// Load .env file if exists
	_ = godotenv.Load()
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := logging.New(cfg.LogFile, cfg.Prod)
	defer logger.Sync()

	ctx := context.Background()
	broker := events.NewBroker[research.IngestResult]()
	defer broker.Shutdown()
	go logPipelineEvents(ctx, broker, logger)

	svc, store, err := buildService(ctx, cfg, broker, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer store.Close()

	if err := cli.Execute(svc); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func logPipelineEvents(ctx context.Context, broker *events.Broker[research.IngestResult], logger *zap.Logger) {
	for ev := range broker.Subscribe(ctx) {
		logger.Debug("pipeline event",
			zap.String("type", string(ev.Type)),
			zap.String("ticker", ev.Payload.Ticker),
			zap.String("source", ev.Payload.Source),
			zap.Int("chunks_indexed", ev.Payload.ChunksIndexed))
	}
}

func buildService(ctx context.Context, cfg config.Settings, broker *events.Broker[research.IngestResult], logger *zap.Logger) (*research.Service, vector.VectorStore, error) {
	chatModel, err := providers.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	embedModel, err := providers.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := vector.NewEmbeddingService(embedModel, cfg.EmbeddingDim)
	if err != nil {
		return nil, nil, err
	}

	store, err := vector.NewRedisStore(ctx, vector.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		IndexName: cfg.IndexName,
		VectorDim: cfg.EmbeddingDim,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	retriever, err := rag.NewRetriever(embedder, store, cfg.MaxDocumentsRetrieved, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	engine, err := rag.NewEngine(chatModel, retriever, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	augmenter, err := rag.NewAugmenter(chatModel, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	chunker, err := document.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, logger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	sentiment := document.NewSentimentAnalyzer(cfg.SentimentThreshold, logger)
	extractor := document.NewMetadataExtractor(sentiment, logger)

	svc, err := research.NewService(research.Config{
		Chunker:   chunker,
		Extractor: extractor,
		Sentiment: sentiment,
		Embedder:  embedder,
		Store:     store,
		Engine:    engine,
		Augmenter: augmenter,
		Events:    broker,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}
