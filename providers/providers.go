// Package providers constructs the language-model and embedding
// backends the pipeline talks to. All providers speak the eino
// component interfaces so the rest of the code never depends on a
// concrete vendor.
package providers

import (
	"context"
	"fmt"

	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	geminiModel "github.com/cloudwego/eino-ext/components/model/gemini"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/prajjwal-io/fin-rag-app/config"
)

// NewChatModel creates the chat model selected by the settings:
// "openai" covers any OpenAI-compatible endpoint, "gemini" the Google
// Gemini API.
func NewChatModel(ctx context.Context, cfg config.Settings) (model.ToolCallingChatModel, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return newGeminiModel(ctx, cfg)
	case "", "openai":
		return newOpenAIModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func newOpenAIModel(ctx context.Context, cfg config.Settings) (model.ToolCallingChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required for the openai provider")
	}
	return openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

func newGeminiModel(ctx context.Context, cfg config.Settings) (model.ToolCallingChatModel, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return geminiModel.NewChatModel(ctx, &geminiModel.Config{
		Client: client,
		Model:  cfg.GeminiModel,
	})
}

// NewEmbedder creates the OpenAI-compatible embedding model used for
// both ingestion and query embedding.
func NewEmbedder(ctx context.Context, cfg config.Settings) (einoEmbedding.Embedder, error) {
	if cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("EMBEDDING_API_KEY is required")
	}
	return openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
		APIKey:  cfg.EmbeddingAPIKey,
		BaseURL: cfg.EmbeddingBaseURL,
		Model:   cfg.EmbeddingModel,
	})
}
