package document

import (
	"strings"

	"go.uber.org/zap"
)

// positiveWords and negativeWords form the financial sentiment lexicon.
var positiveWords = []string{
	"growth", "profit", "increase", "exceed", "outperform", "beat", "strong", "success",
	"positive", "gain", "improve", "opportunity", "upside", "optimistic", "advantage",
	"favorable", "robust", "momentum", "efficiently", "confidence", "progress",
}

var negativeWords = []string{
	"decline", "loss", "decrease", "miss", "underperform", "weak", "fail", "negative",
	"risk", "concern", "challenge", "downside", "pessimistic", "disadvantage", "unfavorable",
	"volatile", "uncertainty", "inefficiently", "doubt", "delay", "struggle", "liability",
}

// generic polarity words for the non-financial component of the score.
var genericPositive = []string{
	"good", "great", "excellent", "best", "better", "well", "high", "higher", "up",
}

var genericNegative = []string{
	"bad", "poor", "worst", "worse", "low", "lower", "down", "difficult", "problem",
}

// SentimentAnalyzer scores financial text polarity in [-1, 1] and
// subjectivity in [0, 1] from word lexicons. The combined score weighs
// the financial lexicon (0.6) over the generic one (0.4) since filing
// and news language leans on domain terms.
type SentimentAnalyzer struct {
	threshold float64
	logger    *zap.Logger
}

// NewSentimentAnalyzer builds an analyzer; threshold bounds the neutral
// band for classification.
func NewSentimentAnalyzer(threshold float64, logger *zap.Logger) *SentimentAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SentimentAnalyzer{threshold: threshold, logger: logger}
}

// Analyze scores a text. Empty text is neutral.
func (a *SentimentAnalyzer) Analyze(text string) Sentiment {
	lower := strings.ToLower(text)

	finPos := countOccurrences(lower, positiveWords)
	finNeg := countOccurrences(lower, negativeWords)
	genPos := countOccurrences(lower, genericPositive)
	genNeg := countOccurrences(lower, genericNegative)

	financial := balance(finPos, finNeg)
	generic := balance(genPos, genNeg)
	score := generic*0.4 + financial*0.6

	subjectivity := 0.0
	if words := len(strings.Fields(lower)); words > 0 {
		subjectivity = float64(finPos+finNeg+genPos+genNeg) * 5 / float64(words)
		if subjectivity > 1 {
			subjectivity = 1
		}
	}

	return Sentiment{
		Score:          score,
		Subjectivity:   subjectivity,
		Classification: a.Classify(score),
	}
}

// Classify maps a score onto positive/negative/neutral using the
// configured threshold.
func (a *SentimentAnalyzer) Classify(score float64) string {
	switch {
	case score >= a.threshold:
		return "positive"
	case score <= -a.threshold:
		return "negative"
	default:
		return "neutral"
	}
}

func countOccurrences(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}

func balance(pos, neg int) float64 {
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
