package document

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Input caps keep per-document extraction latency predictable on large
// filings.
const (
	entityScanLimit    = 10000
	sentimentScanLimit = 5000
)

var (
	fiscalYearRe = regexp.MustCompile(`(?i)(?:fiscal year|FY|F\.Y\.|fiscal|years?) ?(?:ended|ending)? ?(?:on)? ?(\d{4})`)
	quarterRe    = regexp.MustCompile(`(?i)(?:(?:first|second|third|fourth|1st|2nd|3rd|4th) ?quarter|Q[1-4](?: ?quarter)?) ?(?:of)? ?(?:fiscal)? ?(?:year)? ?(\d{4})`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}, \d{4}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	}

	// quarterMarkers maps textual ordinal forms onto quarter labels.
	quarterMarkers = []struct {
		re      *regexp.Regexp
		quarter string
	}{
		{regexp.MustCompile(`(?i)first|1st|Q1`), "Q1"},
		{regexp.MustCompile(`(?i)second|2nd|Q2`), "Q2"},
		{regexp.MustCompile(`(?i)third|3rd|Q3`), "Q3"},
		{regexp.MustCompile(`(?i)fourth|4th|Q4`), "Q4"},
	}

	// candidatePhraseRe matches runs of capitalized words, the raw
	// material for the heuristic entity recognizer.
	candidatePhraseRe = regexp.MustCompile(`(?:[A-Z][A-Za-z&'.-]+|[A-Z]{2,})(?: (?:[A-Z][A-Za-z&'.-]+|[A-Z]{2,})){0,5}`)
)

// financialTerms is the fixed vocabulary tested for presence in the
// document text.
var financialTerms = []string{
	"revenue", "income", "profit", "loss", "earnings", "EBITDA", "EPS", "dividend",
	"assets", "liabilities", "equity", "cash flow", "balance sheet", "income statement",
	"debt", "credit", "investment", "expense", "tax", "depreciation", "amortization",
	"gross margin", "operating margin", "net margin", "ROI", "ROE", "ROA",
}

// corporateSuffixes classifies an organization as a company when any of
// these appear in its name.
var corporateSuffixes = []string{"corp", "inc", "ltd", "company", "corporation"}

// MetadataExtractor derives structured tags (periods, entities,
// sentiment, financial values) from document text. Extraction is
// best-effort and must never block ingestion: every operation returns
// something usable even for hostile input.
type MetadataExtractor struct {
	sentiment *SentimentAnalyzer
	logger    *zap.Logger
}

func NewMetadataExtractor(sentiment *SentimentAnalyzer, logger *zap.Logger) *MetadataExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataExtractor{sentiment: sentiment, logger: logger}
}

// Extract returns the document with its Metadata populated. Content is
// never modified. Documents with empty content pass through unchanged.
func (e *MetadataExtractor) Extract(doc Document) Document {
	if doc.Content == "" {
		return doc
	}
	if doc.Metadata == nil {
		doc.Metadata = &Metadata{}
	}

	doc.Metadata.Periods = ExtractPeriods(doc.Content)
	doc.Metadata.Entities = e.extractEntities(doc.Content)
	doc.Metadata.FinancialValues = ExtractFinancialValues(doc.Content)

	if e.sentiment != nil {
		s := e.sentiment.Analyze(truncate(doc.Content, sentimentScanLimit))
		doc.Metadata.Sentiment = &s
	}
	return doc
}

// ExtractPeriods pattern-matches fiscal-year, quarter and date
// references. Each match becomes a (type, value) pair; duplicates are
// kept, de-duplication policy belongs to consumers.
func ExtractPeriods(text string) []Period {
	var periods []Period

	for _, m := range fiscalYearRe.FindAllStringSubmatch(text, -1) {
		periods = append(periods, Period{Type: "fiscal_year", Value: m[1]})
	}

	for _, m := range quarterRe.FindAllStringSubmatch(text, -1) {
		if q := quarterOf(m[0]); q != "" {
			periods = append(periods, Period{Type: "quarter", Value: q + " " + m[1]})
		}
	}

	for _, re := range datePatterns {
		for _, m := range re.FindAllString(text, -1) {
			periods = append(periods, Period{Type: "date", Value: m})
		}
	}
	return periods
}

func quarterOf(matched string) string {
	for _, marker := range quarterMarkers {
		if marker.re.MatchString(matched) {
			return marker.quarter
		}
	}
	return ""
}

// extractEntities runs a heuristic capitalized-phrase recognizer over
// the first 10,000 characters and tests the financial-term vocabulary
// against the full text. It always returns a usable structure.
func (e *MetadataExtractor) extractEntities(text string) *Entities {
	entities := &Entities{
		Companies:      []string{},
		Organizations:  []string{},
		FinancialTerms: []string{},
	}

	scan := truncate(text, entityScanLimit)
	seen := make(map[string]bool)
	for _, phrase := range candidatePhraseRe.FindAllString(scan, -1) {
		phrase = strings.Trim(phrase, " .'-")
		if len(phrase) <= 2 || seen[phrase] {
			continue
		}
		// Single short words are usually sentence starts, not names.
		if !strings.Contains(phrase, " ") && len(phrase) < 4 && phrase != strings.ToUpper(phrase) {
			continue
		}
		seen[phrase] = true
		if isCompany(phrase) {
			entities.Companies = append(entities.Companies, phrase)
		} else {
			entities.Organizations = append(entities.Organizations, phrase)
		}
	}

	lower := strings.ToLower(text)
	for _, term := range financialTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			entities.FinancialTerms = append(entities.FinancialTerms, term)
		}
	}

	sort.Strings(entities.Companies)
	sort.Strings(entities.Organizations)
	return entities
}

func isCompany(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range corporateSuffixes {
		if strings.Contains(lower, suffix) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
