package vector

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Record is one indexed chunk: the typed fields the index can filter
// on, a content snippet, and a free-form attribute map that is always
// serialized as JSON.
type Record struct {
	Ticker      string
	ContentType string
	FilingType  string
	FilingDate  string
	FilingTS    int64
	Source      string
	ChunkID     int
	ChunkCount  int
	Content     string
	Attributes  map[string]any
	Vector      []float32
}

// ID derives the deterministic record identity so re-ingesting the
// same chunk overwrites rather than duplicates.
func (r Record) ID() string {
	ticker := r.Ticker
	if ticker == "" {
		ticker = "unknown"
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = "doc"
	}
	return fmt.Sprintf("%s_%s_%d", ticker, contentType, r.ChunkID)
}

// SearchResult is one scored match. Score is cosine similarity in
// [0, 1], higher is better.
type SearchResult struct {
	ID     string
	Score  float64
	Record Record
}

// Filter scopes a search or deletion. Zero-value fields do not
// constrain; an empty filter matches everything.
type Filter struct {
	Ticker       string
	ContentTypes []string
	FilingType   string
	Source       string
	From, To     time.Time
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f.Ticker == "" && len(f.ContentTypes) == 0 && f.FilingType == "" &&
		f.Source == "" && f.From.IsZero() && f.To.IsZero()
}

// expr renders the filter as a RediSearch predicate. An unconstrained
// filter renders as "*".
func (f Filter) expr() string {
	var parts []string
	if f.Ticker != "" {
		parts = append(parts, fmt.Sprintf("@ticker:{%s}", escapeTag(f.Ticker)))
	}
	if len(f.ContentTypes) > 0 {
		escaped := make([]string, len(f.ContentTypes))
		for i, ct := range f.ContentTypes {
			escaped[i] = escapeTag(ct)
		}
		parts = append(parts, fmt.Sprintf("@content_type:{%s}", strings.Join(escaped, "|")))
	}
	if f.FilingType != "" {
		parts = append(parts, fmt.Sprintf("@filing_type:{%s}", escapeTag(f.FilingType)))
	}
	if f.Source != "" {
		parts = append(parts, fmt.Sprintf("@source:{%s}", escapeTag(f.Source)))
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		from, to := "-inf", "+inf"
		if !f.From.IsZero() {
			from = fmt.Sprintf("%d", f.From.Unix())
		}
		if !f.To.IsZero() {
			to = fmt.Sprintf("%d", f.To.Unix())
		}
		parts = append(parts, fmt.Sprintf("@filing_ts:[%s %s]", from, to))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// escapeTag backslash-escapes RediSearch TAG metacharacters so values
// like URLs and hyphenated dates survive as single tags.
func escapeTag(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ',', '.', '<', '>', '{', '}', '[', ']', '"', '\'', ':', ';',
			'!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '-', '+',
			'=', '~', '|', '/', '\\', '?', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// VectorStore is the index contract the retrieval layer depends on.
type VectorStore interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, queryVector []float32, topK int, filter Filter) ([]SearchResult, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByFilter(ctx context.Context, filter Filter) (int, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
