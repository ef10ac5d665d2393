package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePositiveText(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	s := a.Analyze("Strong growth and record profit beat expectations this quarter.")

	assert.Greater(t, s.Score, 0.05)
	assert.Equal(t, "positive", s.Classification)
	assert.GreaterOrEqual(t, s.Subjectivity, 0.0)
	assert.LessOrEqual(t, s.Subjectivity, 1.0)
}

func TestAnalyzeNegativeText(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	s := a.Analyze("The decline continued with a heavy loss, weak demand and mounting concern.")

	assert.Less(t, s.Score, -0.05)
	assert.Equal(t, "negative", s.Classification)
}

func TestAnalyzeNeutralText(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	s := a.Analyze("The company filed its annual report with the commission.")

	assert.Equal(t, 0.0, s.Score)
	assert.Equal(t, "neutral", s.Classification)
	assert.Equal(t, 0.0, s.Subjectivity)
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	s := a.Analyze("")

	assert.Equal(t, 0.0, s.Score)
	assert.Equal(t, "neutral", s.Classification)
}

func TestAnalyzeFinancialLexiconOutweighsGeneric(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	// One generic positive against one financial negative.
	s := a.Analyze("good decline")

	assert.Less(t, s.Score, 0.0)
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	assert.Equal(t, "positive", a.Classify(0.05))
	assert.Equal(t, "negative", a.Classify(-0.05))
	assert.Equal(t, "neutral", a.Classify(0.049))
	assert.Equal(t, "neutral", a.Classify(-0.049))
	assert.Equal(t, "neutral", a.Classify(0))
}

func TestAnalyzeScoreBounds(t *testing.T) {
	a := NewSentimentAnalyzer(0.05, nil)

	s := a.Analyze("growth profit gain strong robust momentum confidence progress")

	assert.LessOrEqual(t, s.Score, 1.0)
	assert.GreaterOrEqual(t, s.Score, -1.0)
	assert.LessOrEqual(t, s.Subjectivity, 1.0)
}
