package vector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordID(t *testing.T) {
	rec := Record{Ticker: "AAPL", ContentType: "sec_filing", ChunkID: 2}
	assert.Equal(t, "AAPL_sec_filing_2", rec.ID())
}

func TestRecordIDFallbacks(t *testing.T) {
	assert.Equal(t, "unknown_doc_0", Record{}.ID())
	assert.Equal(t, "MSFT_doc_1", Record{Ticker: "MSFT", ChunkID: 1}.ID())
	assert.Equal(t, "unknown_news_3", Record{ContentType: "news", ChunkID: 3}.ID())
}

func TestFilterExprEmpty(t *testing.T) {
	assert.Equal(t, "*", Filter{}.expr())
	assert.True(t, Filter{}.IsZero())
}

func TestFilterExprTicker(t *testing.T) {
	f := Filter{Ticker: "AAPL"}
	assert.Equal(t, "@ticker:{AAPL}", f.expr())
	assert.False(t, f.IsZero())
}

func TestFilterExprContentTypes(t *testing.T) {
	f := Filter{ContentTypes: []string{"sec_filing", "news"}}
	assert.Equal(t, "@content_type:{sec_filing|news}", f.expr())
}

func TestFilterExprCombined(t *testing.T) {
	f := Filter{
		Ticker:       "AAPL",
		ContentTypes: []string{"sec_filing"},
		FilingType:   "10-K",
		From:         time.Unix(1000, 0),
		To:           time.Unix(2000, 0),
	}
	assert.Equal(t,
		`@ticker:{AAPL} @content_type:{sec_filing} @filing_type:{10\-K} @filing_ts:[1000 2000]`,
		f.expr())
}

func TestFilterExprOpenDateRange(t *testing.T) {
	from := Filter{From: time.Unix(1000, 0)}
	assert.Equal(t, "@filing_ts:[1000 +inf]", from.expr())

	to := Filter{To: time.Unix(2000, 0)}
	assert.Equal(t, "@filing_ts:[-inf 2000]", to.expr())
}

func TestFilterExprSource(t *testing.T) {
	f := Filter{Source: "https://sec.gov/a,b"}
	assert.Equal(t, `@source:{https\:\/\/sec\.gov\/a\,b}`, f.expr())
}

func TestEscapeTag(t *testing.T) {
	assert.Equal(t, `2023\-10\-27`, escapeTag("2023-10-27"))
	assert.Equal(t, "plain", escapeTag("plain"))
	assert.Equal(t, `a\ b`, escapeTag("a b"))
}
