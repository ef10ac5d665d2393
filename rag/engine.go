package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/prajjwal-io/fin-rag-app/vector"
)

const (
	engineSystemPrompt = "You are a financial research assistant with expertise in analyzing financial documents, SEC filings, and market data."

	// noInfoAnswer is returned verbatim when retrieval comes back empty.
	noInfoAnswer = "I couldn't find relevant information to answer your question. Please try a different question or provide more specific details."
)

// Source cites one retrieved document in an answer.
type Source struct {
	Type       string `json:"type"`
	Source     string `json:"source"`
	FilingType string `json:"filing_type,omitempty"`
	FilingDate string `json:"filing_date,omitempty"`
}

// Answer is a grounded response with its citations in retrieval order.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Engine synthesizes grounded answers from retrieved context.
type Engine struct {
	model     model.ToolCallingChatModel
	retriever *Retriever
	logger    *zap.Logger
}

func NewEngine(chatModel model.ToolCallingChatModel, retriever *Retriever, logger *zap.Logger) (*Engine, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{model: chatModel, retriever: retriever, logger: logger}, nil
}

// AnswerQuestion retrieves context for the query (scoped to ticker and
// content types when given) and synthesizes an answer grounded only in
// that context. Empty retrieval yields the fixed no-information answer
// with no model call.
func (e *Engine) AnswerQuestion(ctx context.Context, query, ticker string, contentTypes []string) (Answer, error) {
	var results []vector.SearchResult
	var err error
	if ticker != "" {
		results, err = e.retriever.RetrieveByTicker(ctx, query, ticker, contentTypes, 0)
	} else {
		results, err = e.retriever.Retrieve(ctx, query, vector.Filter{ContentTypes: contentTypes}, 0)
	}
	if err != nil {
		return Answer{}, err
	}

	if len(results) == 0 {
		return Answer{Answer: noInfoAnswer, Sources: []Source{}}, nil
	}

	prompt := fmt.Sprintf(`Answer the following query based ONLY on the provided context information. If the context doesn't contain the information needed to answer the query, say "I don't have enough information to answer this question" and suggest what else might be needed.

CONTEXT:
%s

QUERY: %s

ANSWER:`, FormatContext(results), query)

	resp, err := e.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(engineSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return Answer{
		Answer:  strings.TrimSpace(resp.Content),
		Sources: sourcesOf(results),
	}, nil
}

// AnalyzeMetric answers a templated question about one company metric
// (revenue, profit/earnings, growth, or a free-form metric name).
func (e *Engine) AnalyzeMetric(ctx context.Context, ticker, metricType, timePeriod string) (Answer, error) {
	if ticker == "" {
		return Answer{}, fmt.Errorf("ticker is required")
	}
	if metricType == "" {
		return Answer{}, fmt.Errorf("metric type is required")
	}

	query := metricQuery(ticker, metricType, timePeriod)
	contentTypes := []string{"sec_filing", "financial_data", "news"}
	return e.AnswerQuestion(ctx, query, ticker, contentTypes)
}

func metricQuery(ticker, metricType, timePeriod string) string {
	in := ""
	if timePeriod != "" {
		in = " in " + timePeriod
	}

	switch strings.ToLower(metricType) {
	case "revenue":
		return fmt.Sprintf("What was %s's revenue%s? Include growth rates and trends.", ticker, in)
	case "profit", "earnings":
		return fmt.Sprintf("What was %s's profit or earnings%s? Include net income, EPS, and profit margins.", ticker, in)
	case "growth":
		return fmt.Sprintf("What is %s's growth rate%s? Include revenue growth, profit growth, and market expansion.", ticker, in)
	default:
		return fmt.Sprintf("Analyze %s's %s%s", ticker, metricType, in)
	}
}

// FormatContext renders retrieved documents as the prompt context,
// each under a header naming what kind of document it is.
func FormatContext(results []vector.SearchResult) string {
	if len(results) == 0 {
		return "No relevant information found."
	}

	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = fmt.Sprintf("[%s]\n%s\n", contextHeader(res.Record, i), res.Record.Content)
	}
	return strings.Join(parts, "\n")
}

func contextHeader(rec vector.Record, position int) string {
	dated := func(header string) string {
		if rec.FilingDate != "" {
			return header + " (" + rec.FilingDate + ")"
		}
		return header
	}

	switch rec.ContentType {
	case "sec_filing":
		if rec.FilingType != "" {
			return dated(rec.FilingType + " Filing")
		}
	case "news":
		return dated("News Article")
	case "financial_data":
		return dated("Financial Data")
	}
	return fmt.Sprintf("Document %d", position+1)
}

func sourcesOf(results []vector.SearchResult) []Source {
	sources := make([]Source, len(results))
	for i, res := range results {
		contentType := res.Record.ContentType
		if contentType == "" {
			contentType = "document"
		}
		source := res.Record.Source
		if source == "" {
			source = "Unknown"
		}
		sources[i] = Source{
			Type:       contentType,
			Source:     source,
			FilingType: res.Record.FilingType,
			FilingDate: res.Record.FilingDate,
		}
	}
	return sources
}
