package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/prajjwal-io/fin-rag-app/vector"
)

const augmenterSystemPrompt = "You are an expert in financial analysis and investment research."

// llmSentimentScanLimit bounds the text sent for model-based sentiment
// scoring.
const llmSentimentScanLimit = 4000

// QueryEntities is the structured reading of a user query.
type QueryEntities struct {
	Companies      []string `json:"companies"`
	Metrics        []string `json:"metrics"`
	TimePeriods    []string `json:"time_periods"`
	FinancialTerms []string `json:"financial_terms"`
}

// Augmenter rewrites and analyzes user queries with an LLM before
// retrieval. Every method returns the model failure to the caller;
// deciding whether to fall back to the raw query is the caller's
// business.
type Augmenter struct {
	model  model.ToolCallingChatModel
	logger *zap.Logger
}

func NewAugmenter(chatModel model.ToolCallingChatModel, logger *zap.Logger) (*Augmenter, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Augmenter{model: chatModel, logger: logger}, nil
}

// Expand rewrites a query with related financial terms, metrics and
// concepts to improve vector recall while keeping the original intent.
func (a *Augmenter) Expand(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`The following is a user query related to financial analysis or investment research:

USER QUERY: %s

Please expand this query to include relevant financial terms, metrics, and concepts that would help in retrieving better search results. Your expansion should maintain the original intent of the query while making it more comprehensive for a vector search system.

EXPANDED QUERY:`, query)

	resp, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(augmenterSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to expand query: %w", err)
	}

	expanded := strings.TrimSpace(resp.Content)
	if expanded == "" {
		return "", fmt.Errorf("model returned an empty expansion")
	}

	a.logger.Info("expanded query", zap.String("expanded", expanded))
	return expanded, nil
}

// DeriveFilter asks the model which tickers and document types the
// query names and maps the first answers onto an index filter.
func (a *Augmenter) DeriveFilter(ctx context.Context, query string) (vector.Filter, error) {
	prompt := fmt.Sprintf(`The following is a user query related to financial analysis or investment research:

USER QUERY: %s

Based on this query, identify the following elements (if present):
1. Company ticker symbols or names
2. Time periods or dates
3. Financial document types (10-K, 10-Q, 8-K, earnings call, etc.)
4. Financial metrics or KPIs

Return your analysis as a JSON object with these keys: "tickers", "time_periods", "document_types", "metrics".
If any element is not present, use an empty list for that key. Format as valid JSON only.

JSON RESPONSE:`, query)

	resp, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(augmenterSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return vector.Filter{}, fmt.Errorf("failed to derive search filter: %w", err)
	}

	var parsed struct {
		Tickers       []string `json:"tickers"`
		DocumentTypes []string `json:"document_types"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &parsed); err != nil {
		return vector.Filter{}, fmt.Errorf("undecodable filter response: %w", err)
	}

	var filter vector.Filter
	if len(parsed.Tickers) > 0 {
		filter.Ticker = parsed.Tickers[0]
	}
	filter.ContentTypes = parsed.DocumentTypes

	a.logger.Info("derived search filter",
		zap.String("ticker", filter.Ticker),
		zap.Strings("content_types", filter.ContentTypes))
	return filter, nil
}

// ExtractEntities pulls companies, metrics, time periods and financial
// terms out of a query.
func (a *Augmenter) ExtractEntities(ctx context.Context, query string) (QueryEntities, error) {
	prompt := fmt.Sprintf(`The following is a user query related to financial analysis or investment research:

USER QUERY: %s

Extract all financial entities from this query and categorize them. Return your extraction as a JSON object with these keys:
- "companies": List of company names/tickers
- "metrics": List of financial metrics mentioned
- "time_periods": List of time periods/dates mentioned
- "financial_terms": List of financial terms/concepts

Format as valid JSON only.

JSON RESPONSE:`, query)

	resp, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(augmenterSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return QueryEntities{}, fmt.Errorf("failed to extract query entities: %w", err)
	}

	var entities QueryEntities
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &entities); err != nil {
		return QueryEntities{}, fmt.Errorf("undecodable entity response: %w", err)
	}
	return entities, nil
}

// SentimentVerdict is a model-based reading of financial text
// sentiment, more nuanced than the lexicon analyzer.
type SentimentVerdict struct {
	Score           float64  `json:"sentiment_score"`
	PositiveFactors []string `json:"positive_factors"`
	NegativeFactors []string `json:"negative_factors"`
	Confidence      float64  `json:"confidence"`
}

// ScoreSentiment asks the model to rate a financial text in [-1, 1]
// and name the factors driving the rating. Input is truncated to keep
// the prompt bounded.
func (a *Augmenter) ScoreSentiment(ctx context.Context, text string) (SentimentVerdict, error) {
	if len(text) > llmSentimentScanLimit {
		text = text[:llmSentimentScanLimit]
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of the following financial text. Consider financial terms and context specifically.

Text: %s

Rate the sentiment on a scale from -1.0 (very negative) to 1.0 (very positive).
Identify key positive and negative factors.
Format the response as JSON with these keys: "sentiment_score", "positive_factors", "negative_factors", "confidence".`, text)

	resp, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You are a financial sentiment analysis expert."),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return SentimentVerdict{}, fmt.Errorf("failed to score sentiment: %w", err)
	}

	var verdict SentimentVerdict
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &verdict); err != nil {
		return SentimentVerdict{}, fmt.Errorf("undecodable sentiment response: %w", err)
	}
	return verdict, nil
}

// stripCodeFence unwraps ```json ... ``` fences models like to wrap
// JSON responses in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
