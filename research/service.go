// Package research orchestrates the full pipeline: document ingestion
// into the vector index, question answering, sentiment analysis and
// multi-topic research reports.
package research

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prajjwal-io/fin-rag-app/document"
	"github.com/prajjwal-io/fin-rag-app/events"
	"github.com/prajjwal-io/fin-rag-app/rag"
	"github.com/prajjwal-io/fin-rag-app/vector"
)

// defaultReportTopics are the sections of a research report when the
// caller requests none.
var defaultReportTopics = []string{
	"Financial Performance", "Business Overview", "Risks", "Future Outlook",
}

var filingDateLayouts = []string{
	"2006-01-02", "January 2, 2006", "1/2/2006",
}

// IngestResult reports what happened to one document. A document can
// be accepted with zero indexed chunks (Reason says why); that is
// degradation, not an error.
type IngestResult struct {
	Ticker        string `json:"ticker"`
	Source        string `json:"source"`
	ChunksTotal   int    `json:"chunks_total"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Reason        string `json:"reason,omitempty"`
}

// QueryResult is an answered query with its citations and, when
// expansion ran, the rewritten query that was actually searched.
type QueryResult struct {
	Answer        string       `json:"answer"`
	Sources       []rag.Source `json:"sources"`
	Query         string       `json:"query"`
	ExpandedQuery string       `json:"expanded_query,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// ReportSection is one topic's analysis within a report.
type ReportSection struct {
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Sources []rag.Source `json:"sources"`
}

// Report is a multi-topic company research report. Sources holds the
// union of all section and summary citations, de-duplicated by source
// in first-seen order.
type Report struct {
	Ticker      string          `json:"ticker"`
	TimePeriod  string          `json:"time_period,omitempty"`
	Summary     string          `json:"summary"`
	Sections    []ReportSection `json:"sections"`
	Sources     []rag.Source    `json:"sources"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// DocumentSentiment scores one document within a sentiment summary.
type DocumentSentiment struct {
	Source         string  `json:"source"`
	FilingDate     string  `json:"filing_date,omitempty"`
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
}

// SentimentSummary aggregates sentiment over a set of documents.
type SentimentSummary struct {
	Ticker            string              `json:"ticker"`
	AverageScore      float64             `json:"average_score"`
	Classification    string              `json:"classification"`
	Distribution      map[string]float64  `json:"distribution"`
	DocumentsAnalyzed int                 `json:"documents_analyzed"`
	Details           []DocumentSentiment `json:"details"`
}

// Service wires the pipeline components. All collaborators are
// injected; the service owns no connections itself.
type Service struct {
	chunker   *document.Chunker
	extractor *document.MetadataExtractor
	sentiment *document.SentimentAnalyzer
	embedder  *vector.EmbeddingService
	store     vector.VectorStore
	engine    *rag.Engine
	augmenter *rag.Augmenter
	events    events.Publisher[IngestResult]
	logger    *zap.Logger
}

// Config collects the service's collaborators. Events is optional;
// when set, ingestion progress is published to it.
type Config struct {
	Chunker   *document.Chunker
	Extractor *document.MetadataExtractor
	Sentiment *document.SentimentAnalyzer
	Embedder  *vector.EmbeddingService
	Store     vector.VectorStore
	Engine    *rag.Engine
	Augmenter *rag.Augmenter
	Events    events.Publisher[IngestResult]
	Logger    *zap.Logger
}

func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.Chunker == nil:
		return nil, fmt.Errorf("chunker is required")
	case cfg.Extractor == nil:
		return nil, fmt.Errorf("metadata extractor is required")
	case cfg.Embedder == nil:
		return nil, fmt.Errorf("embedding service is required")
	case cfg.Store == nil:
		return nil, fmt.Errorf("vector store is required")
	case cfg.Engine == nil:
		return nil, fmt.Errorf("query engine is required")
	case cfg.Augmenter == nil:
		return nil, fmt.Errorf("query augmenter is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunker:   cfg.Chunker,
		extractor: cfg.Extractor,
		sentiment: cfg.Sentiment,
		embedder:  cfg.Embedder,
		store:     cfg.Store,
		engine:    cfg.Engine,
		augmenter: cfg.Augmenter,
		events:    cfg.Events,
		logger:    logger,
	}, nil
}

// Ingest runs one document through normalization, metadata extraction,
// chunking, embedding and indexing. An unavailable embedding backend
// degrades to zero indexed chunks with the reason recorded; a store
// failure is an error since accepted chunks would otherwise be lost
// silently.
func (s *Service) Ingest(ctx context.Context, doc document.Document) (IngestResult, error) {
	s.publish(events.IngestStarted, IngestResult{Ticker: doc.Ticker, Source: doc.Source})
	result, err := s.ingest(ctx, doc)
	s.publish(events.IngestFinished, result)
	return result, err
}

func (s *Service) publish(t events.Type, res IngestResult) {
	if s.events != nil {
		s.events.Publish(t, res)
	}
}

func (s *Service) ingest(ctx context.Context, doc document.Document) (IngestResult, error) {
	result := IngestResult{Ticker: doc.Ticker, Source: doc.Source}

	doc.Content = document.Normalize(doc.Content)
	doc = s.extractor.Extract(doc)

	chunks := s.chunker.Chunk(doc)
	result.ChunksTotal = len(chunks)
	if len(chunks) == 0 {
		result.Reason = "document produced no chunks"
		return result, nil
	}

	vectors, err := s.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		s.logger.Warn("embedding unavailable, document not indexed",
			zap.String("ticker", doc.Ticker),
			zap.String("source", doc.Source),
			zap.Error(err))
		result.Reason = fmt.Sprintf("embedding unavailable: %v", err)
		return result, nil
	}

	records := make([]vector.Record, 0, len(chunks))
	for i, chunk := range chunks {
		if vectors[i] == nil {
			continue
		}
		records = append(records, recordOf(chunk, vectors[i]))
	}
	if len(records) == 0 {
		result.Reason = "no chunk produced an embedding"
		return result, nil
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return result, fmt.Errorf("failed to index %s: %w", doc.Source, err)
	}
	result.ChunksIndexed = len(records)

	s.logger.Info("ingested document",
		zap.String("ticker", doc.Ticker),
		zap.String("source", doc.Source),
		zap.Int("chunks", result.ChunksIndexed))
	return result, nil
}

// IngestBatch ingests documents in order, stopping at the first store
// failure.
func (s *Service) IngestBatch(ctx context.Context, docs []document.Document) ([]IngestResult, error) {
	results := make([]IngestResult, 0, len(docs))
	for _, doc := range docs {
		res, err := s.Ingest(ctx, doc)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Query answers a question over the index. With expand set the query
// is first rewritten by the augmenter; an augmenter failure falls back
// to the raw query with a warning rather than failing the request.
func (s *Service) Query(ctx context.Context, query, ticker string, contentTypes []string, expand bool) (QueryResult, error) {
	result := QueryResult{Query: query, Timestamp: time.Now()}

	searched := query
	if expand {
		expanded, err := s.augmenter.Expand(ctx, query)
		if err != nil {
			s.logger.Warn("query expansion failed, using original query", zap.Error(err))
		} else {
			searched = expanded
			result.ExpandedQuery = expanded
		}
	}

	answer, err := s.engine.AnswerQuestion(ctx, searched, ticker, contentTypes)
	if err != nil {
		return result, err
	}
	result.Answer = answer.Answer
	result.Sources = answer.Sources
	return result, nil
}

// AnalyzeMetric answers a templated metric question for a company.
func (s *Service) AnalyzeMetric(ctx context.Context, ticker, metricType, timePeriod string) (rag.Answer, error) {
	return s.engine.AnalyzeMetric(ctx, ticker, metricType, timePeriod)
}

// Research builds a multi-topic report for a company: one section per
// topic plus an executive summary, each grounded in its own retrieval.
// A failing section is recorded in the report rather than aborting the
// remaining topics.
func (s *Service) Research(ctx context.Context, ticker string, topics []string, timePeriod string) (Report, error) {
	if ticker == "" {
		return Report{}, fmt.Errorf("ticker is required")
	}
	if len(topics) == 0 {
		topics = defaultReportTopics
	}

	report := Report{
		Ticker:      ticker,
		TimePeriod:  timePeriod,
		Sections:    make([]ReportSection, 0, len(topics)),
		GeneratedAt: time.Now(),
	}
	var all []rag.Source

	for _, topic := range topics {
		topicQuery := fmt.Sprintf("Provide an analysis of %s's %s", ticker, topic)
		if timePeriod != "" {
			topicQuery += " for " + timePeriod
		}

		res, err := s.Query(ctx, topicQuery, ticker, nil, true)
		if err != nil {
			s.logger.Error("report section failed",
				zap.String("ticker", ticker),
				zap.String("topic", topic),
				zap.Error(err))
			report.Sections = append(report.Sections, ReportSection{
				Title:   topic,
				Content: fmt.Sprintf("Analysis of %s is unavailable: %v", topic, err),
				Sources: []rag.Source{},
			})
			continue
		}

		report.Sections = append(report.Sections, ReportSection{
			Title:   topic,
			Content: res.Answer,
			Sources: res.Sources,
		})
		all = append(all, res.Sources...)
	}

	summaryQuery := fmt.Sprintf("Provide a concise executive summary of %s", ticker)
	if timePeriod != "" {
		summaryQuery += " for " + timePeriod
	}
	if res, err := s.Query(ctx, summaryQuery, ticker, nil, true); err != nil {
		s.logger.Error("report summary failed", zap.String("ticker", ticker), zap.Error(err))
	} else {
		report.Summary = res.Answer
		all = append(all, res.Sources...)
	}

	report.Sources = dedupSources(all)
	return report, nil
}

// AnalyzeSentiment scores a set of documents for one company and
// aggregates the result. Detail rows are capped at ten.
func (s *Service) AnalyzeSentiment(ticker string, docs []document.Document) SentimentSummary {
	summary := SentimentSummary{
		Ticker:       ticker,
		Distribution: map[string]float64{"positive": 0, "neutral": 0, "negative": 0},
		Details:      []DocumentSentiment{},
	}
	if s.sentiment == nil || len(docs) == 0 {
		summary.Classification = "neutral"
		return summary
	}

	total := 0.0
	for _, doc := range docs {
		sent := s.sentiment.Analyze(doc.Content)
		total += sent.Score
		summary.Distribution[sent.Classification]++
		if len(summary.Details) < 10 {
			summary.Details = append(summary.Details, DocumentSentiment{
				Source:         doc.Source,
				FilingDate:     doc.FilingDate,
				Score:          sent.Score,
				Classification: sent.Classification,
			})
		}
	}

	n := float64(len(docs))
	summary.DocumentsAnalyzed = len(docs)
	summary.AverageScore = total / n
	summary.Classification = s.sentiment.Classify(summary.AverageScore)
	for k := range summary.Distribution {
		summary.Distribution[k] = summary.Distribution[k] / n * 100
	}
	return summary
}

// ScoreSentiment runs the model-based sentiment read on one text, for
// callers that want factor attribution beyond the lexicon score.
func (s *Service) ScoreSentiment(ctx context.Context, text string) (rag.SentimentVerdict, error) {
	return s.augmenter.ScoreSentiment(ctx, text)
}

// recordOf maps a chunk onto an index record. Structured metadata
// rides along in the attributes map.
func recordOf(chunk document.Chunk, vec []float32) vector.Record {
	rec := vector.Record{
		Ticker:      chunk.Ticker,
		ContentType: chunk.ContentType.String(),
		FilingType:  chunk.FilingType,
		FilingDate:  chunk.FilingDate,
		FilingTS:    parseFilingTime(chunk.FilingDate),
		Source:      chunk.Source,
		ChunkID:     chunk.ChunkID,
		ChunkCount:  chunk.ChunkCount,
		Content:     chunk.Content,
		Vector:      vec,
	}
	if m := chunk.Metadata; m != nil {
		attrs := map[string]any{}
		if len(m.Periods) > 0 {
			attrs["periods"] = m.Periods
		}
		if m.Entities != nil {
			attrs["entities"] = m.Entities
		}
		if m.Sentiment != nil {
			attrs["sentiment"] = m.Sentiment
		}
		if len(m.FinancialValues) > 0 {
			attrs["financial_values"] = m.FinancialValues
		}
		if len(attrs) > 0 {
			rec.Attributes = attrs
		}
	}
	return rec
}

// parseFilingTime converts a display date to a unix timestamp for the
// sortable index field; unparseable dates become zero, which range
// filters treat as out of range.
func parseFilingTime(date string) int64 {
	for _, layout := range filingDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// dedupSources keeps the first occurrence of each source value,
// preserving order.
func dedupSources(sources []rag.Source) []rag.Source {
	seen := make(map[string]bool, len(sources))
	unique := make([]rag.Source, 0, len(sources))
	for _, src := range sources {
		if seen[src.Source] {
			continue
		}
		seen[src.Source] = true
		unique = append(unique, src)
	}
	return unique
}
