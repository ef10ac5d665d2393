package vector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultEFConstruction = 200
	defaultM              = 16

	upsertBatchSize     = 500
	contentSnippetLimit = 1000
	deleteScanLimit     = 1000

	// Field names in the Redis hash.
	fieldVector      = "vector"
	fieldContent     = "content"
	fieldTicker      = "ticker"
	fieldContentType = "content_type"
	fieldFilingType  = "filing_type"
	fieldFilingDate  = "filing_date"
	fieldFilingTS    = "filing_ts"
	fieldSource      = "source"
	fieldChunkID     = "chunk_id"
	fieldChunkCount  = "chunk_count"
	fieldAttributes  = "attributes"
)

var returnFields = []string{
	fieldContent, fieldTicker, fieldContentType, fieldFilingType,
	fieldFilingDate, fieldFilingTS, fieldSource, fieldChunkID,
	fieldChunkCount, fieldAttributes,
}

// RedisConfig holds Redis connection and index configuration.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	IndexName      string
	VectorDim      int
	EFConstruction int
	M              int
}

// RedisStore implements VectorStore on Redis with RediSearch HNSW
// vector search. Records live as hashes under "<index>:" keys.
type RedisStore struct {
	client    *redis.Client
	indexName string
	keyPrefix string
	dim       int
	logger    *zap.Logger
}

// NewRedisStore connects, verifies the connection and ensures the
// vector index exists.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", cfg.VectorDim)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(clientOptions(cfg))
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisStore{
		client:    client,
		indexName: cfg.IndexName,
		keyPrefix: cfg.IndexName + ":",
		dim:       cfg.VectorDim,
		logger:    logger,
	}
	if err := store.ensureIndex(ctx, cfg); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	return store, nil
}

// clientOptions pins RESP2: the FT.SEARCH reply parser expects the
// array shape, and RESP3 (the go-redis v9 default) turns RediSearch
// replies into maps.
func clientOptions(cfg RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
		Protocol: 2,
	}
}

// ensureIndex creates the HNSW index if it doesn't exist yet.
func (s *RedisStore) ensureIndex(ctx context.Context, cfg RedisConfig) error {
	if _, err := s.client.Do(ctx, "FT.INFO", s.indexName).Result(); err == nil {
		return nil
	}

	ef := cfg.EFConstruction
	if ef <= 0 {
		ef = defaultEFConstruction
	}
	m := cfg.M
	if m <= 0 {
		m = defaultM
	}

	_, err := s.client.Do(ctx, "FT.CREATE", s.indexName,
		"ON", "HASH",
		"PREFIX", "1", s.keyPrefix,
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.dim),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(ef),
		"M", strconv.Itoa(m),
		fieldContent, "TEXT",
		fieldTicker, "TAG",
		fieldContentType, "TAG",
		fieldFilingType, "TAG",
		fieldFilingDate, "TAG",
		fieldSource, "TAG",
		fieldFilingTS, "NUMERIC", "SORTABLE",
		fieldChunkID, "NUMERIC",
		fieldChunkCount, "NUMERIC",
	).Result()
	if err != nil {
		return fmt.Errorf("FT.CREATE %s: %w", s.indexName, err)
	}

	s.logger.Info("created vector index",
		zap.String("index", s.indexName),
		zap.Int("dim", s.dim))
	return nil
}

// Upsert writes records in pipelined batches. Keys derive from
// Record.ID so the operation is idempotent per chunk.
func (s *RedisStore) Upsert(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		pipe := s.client.Pipeline()
		for _, rec := range records[start:end] {
			if len(rec.Vector) != s.dim {
				return fmt.Errorf("record %s: vector dimension %d, index expects %d",
					rec.ID(), len(rec.Vector), s.dim)
			}

			attrs := rec.Attributes
			if attrs == nil {
				attrs = map[string]any{}
			}
			attrsJSON, err := json.Marshal(attrs)
			if err != nil {
				return fmt.Errorf("record %s: encode attributes: %w", rec.ID(), err)
			}

			pipe.HSet(ctx, s.keyPrefix+rec.ID(),
				fieldVector, encodeVector(rec.Vector),
				fieldContent, snippet(rec.Content),
				fieldTicker, rec.Ticker,
				fieldContentType, rec.ContentType,
				fieldFilingType, rec.FilingType,
				fieldFilingDate, rec.FilingDate,
				fieldFilingTS, rec.FilingTS,
				fieldSource, rec.Source,
				fieldChunkID, rec.ChunkID,
				fieldChunkCount, rec.ChunkCount,
				fieldAttributes, attrsJSON,
			)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to upsert records: %w", err)
		}
	}
	return nil
}

// Search runs a filtered KNN query and returns matches ordered by
// descending similarity.
func (s *RedisStore) Search(ctx context.Context, queryVector []float32, topK int, filter Filter) ([]SearchResult, error) {
	if len(queryVector) != s.dim {
		return nil, fmt.Errorf("query vector dimension %d, index expects %d", len(queryVector), s.dim)
	}
	if topK <= 0 {
		topK = 5
	}
	if topK > 100 {
		topK = 100
	}

	query := fmt.Sprintf("(%s)=>[KNN %d @vector $query_vector AS dist]", filter.expr(), topK)

	args := []any{"FT.SEARCH", s.indexName, query,
		"PARAMS", "2", "query_vector", encodeVector(queryVector),
		"RETURN", strconv.Itoa(len(returnFields) + 1),
	}
	for _, f := range returnFields {
		args = append(args, f)
	}
	args = append(args, "dist",
		"SORTBY", "dist", "ASC",
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	)

	raw, err := s.client.Do(ctx, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return s.parseSearchResults(raw)
}

// parseSearchResults decodes the FT.SEARCH reply: a count followed by
// (id, field-value list) pairs.
func (s *RedisStore) parseSearchResults(raw any) ([]SearchResult, error) {
	values, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected search result format %T", raw)
	}
	if len(values) < 2 {
		return []SearchResult{}, nil
	}

	results := []SearchResult{}
	for i := 1; i+1 < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		fields, ok := values[i+1].([]any)
		if !ok {
			continue
		}

		rec, dist := s.parseRecord(fields)
		results = append(results, SearchResult{
			ID:     trimPrefix(key, s.keyPrefix),
			Score:  1 - dist,
			Record: rec,
		})
	}
	return results, nil
}

func (s *RedisStore) parseRecord(fields []any) (Record, float64) {
	var rec Record
	var dist float64

	for i := 0; i+1 < len(fields); i += 2 {
		name, ok := fields[i].(string)
		if !ok {
			continue
		}
		val := asString(fields[i+1])

		switch name {
		case fieldContent:
			rec.Content = val
		case fieldTicker:
			rec.Ticker = val
		case fieldContentType:
			rec.ContentType = val
		case fieldFilingType:
			rec.FilingType = val
		case fieldFilingDate:
			rec.FilingDate = val
		case fieldFilingTS:
			rec.FilingTS, _ = strconv.ParseInt(val, 10, 64)
		case fieldSource:
			rec.Source = val
		case fieldChunkID:
			rec.ChunkID, _ = strconv.Atoi(val)
		case fieldChunkCount:
			rec.ChunkCount, _ = strconv.Atoi(val)
		case fieldAttributes:
			if val != "" {
				if err := json.Unmarshal([]byte(val), &rec.Attributes); err != nil {
					s.logger.Warn("undecodable attributes field", zap.Error(err))
				}
			}
		case "dist":
			dist, _ = strconv.ParseFloat(val, 64)
		}
	}
	return rec, dist
}

// DeleteByIDs removes records by their logical IDs.
func (s *RedisStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keyPrefix + id
	}
	return s.client.Del(ctx, keys...).Err()
}

// DeleteByFilter removes every record the filter matches and returns
// the number deleted. An empty filter is rejected to avoid wiping the
// index by accident.
func (s *RedisStore) DeleteByFilter(ctx context.Context, filter Filter) (int, error) {
	if filter.IsZero() {
		return 0, fmt.Errorf("refusing to delete with an empty filter")
	}

	deleted := 0
	for {
		raw, err := s.client.Do(ctx, "FT.SEARCH", s.indexName, filter.expr(),
			"NOCONTENT",
			"LIMIT", "0", strconv.Itoa(deleteScanLimit),
			"DIALECT", "2",
		).Result()
		if err != nil {
			return deleted, fmt.Errorf("delete scan failed: %w", err)
		}

		values, ok := raw.([]any)
		if !ok || len(values) < 2 {
			return deleted, nil
		}

		var keys []string
		for i := 1; i < len(values); i++ {
			if key, ok := values[i].(string); ok {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			return deleted, nil
		}

		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete records: %w", err)
		}
		deleted += len(keys)

		if len(keys) < deleteScanLimit {
			return deleted, nil
		}
	}
}

// Count returns the number of indexed records.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	raw, err := s.client.Do(ctx, "FT.INFO", s.indexName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get index info: %w", err)
	}

	values, ok := raw.([]any)
	if !ok {
		return 0, fmt.Errorf("unexpected index info format %T", raw)
	}
	for i := 0; i+1 < len(values); i += 2 {
		if key, ok := values[i].(string); ok && key == "num_docs" {
			return strconv.ParseInt(asString(values[i+1]), 10, 64)
		}
	}
	return 0, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// encodeVector packs float32 components little-endian, the layout
// RediSearch expects for FLOAT32 vector fields.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func snippet(content string) string {
	if len(content) <= contentSnippetLimit {
		return content
	}
	cut := contentSnippetLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func trimPrefix(key, prefix string) string {
	if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
