package document

// ContentType identifies the kind of financial content a document holds.
type ContentType string

const (
	ContentTypeSECFiling     ContentType = "sec_filing"
	ContentTypeNews          ContentType = "news"
	ContentTypeFinancialData ContentType = "financial_data"
	ContentTypeGeneric       ContentType = "generic"
)

// String returns the wire form of the content type, defaulting unknown
// values to the generic type.
func (c ContentType) String() string {
	switch c {
	case ContentTypeSECFiling, ContentTypeNews, ContentTypeFinancialData:
		return string(c)
	default:
		return string(ContentTypeGeneric)
	}
}

// Period is a single financial period reference extracted from text.
type Period struct {
	Type  string `json:"type"` // fiscal_year, quarter, date
	Value string `json:"value"`
}

// Entities groups the named entities recognized in a document.
type Entities struct {
	Companies      []string `json:"companies"`
	Organizations  []string `json:"organizations"`
	FinancialTerms []string `json:"financial_terms"`
}

// Sentiment holds the lexicon-based sentiment analysis of a document.
type Sentiment struct {
	Score          float64 `json:"score"`        // [-1, 1]
	Subjectivity   float64 `json:"subjectivity"` // [0, 1]
	Classification string  `json:"classification"`
}

// FinancialValue is a numeric figure extracted from text together with
// the keyword that anchored it and its surrounding context.
type FinancialValue struct {
	Keyword     string   `json:"keyword"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit,omitempty"`
	Context     string   `json:"context"`
	TimePeriods []string `json:"time_periods,omitempty"`
}

// Metadata is the open set of attributes derived from a document's text.
type Metadata struct {
	Periods         []Period                    `json:"periods,omitempty"`
	Entities        *Entities                   `json:"entities,omitempty"`
	Sentiment       *Sentiment                  `json:"sentiment,omitempty"`
	FinancialValues map[string][]FinancialValue `json:"financial_values,omitempty"`
}

// Document is a unit of ingested financial content. Documents are
// enriched in place by the metadata extractor and fanned out into
// chunks; they are never mutated after chunking.
type Document struct {
	Content     string
	ContentType ContentType
	Ticker      string
	Source      string
	FilingType  string // sec_filing only
	FilingDate  string // sec_filing only, display form
	Metadata    *Metadata
}

// Chunk is a retrieval-sized slice of a parent document. It carries a
// copy of every document field with Content replaced by the slice.
type Chunk struct {
	Document
	ChunkID    int // 0-based position within the parent
	ChunkCount int // total chunks produced from the parent
}
