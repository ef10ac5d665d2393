package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	contextYearRe    = regexp.MustCompile(`\b(?:20\d{2}|19\d{2})\b`)
	contextQuarterRe = regexp.MustCompile(`(?i)\bQ[1-4]\b`)
)

// valueCategories drives financial value extraction: each category is a
// set of anchoring keywords and the kind of figure expected near them.
var valueCategories = []struct {
	name     string
	keywords []string
	percent  bool
}{
	{"revenues", []string{"revenue", "sales"}, false},
	{"profits", []string{"profit", "income", "earnings"}, false},
	{"margins", []string{"margin"}, true},
	{"growth_rates", []string{"growth", "increase"}, true},
}

// ExtractFinancialValues scans text for keyword-anchored dollar amounts
// and percentages, e.g. "revenue of $1.2 billion" or "growth of 12.3%".
// Amounts carry their million/billion/trillion multiplier applied.
func ExtractFinancialValues(text string) map[string][]FinancialValue {
	values := make(map[string][]FinancialValue, len(valueCategories))
	for _, cat := range valueCategories {
		values[cat.name] = extractValues(text, cat.keywords, cat.percent)
	}
	return values
}

func extractValues(text string, keywords []string, percent bool) []FinancialValue {
	keywordPattern := strings.Join(keywords, "|")

	var re *regexp.Regexp
	if percent {
		re = regexp.MustCompile(fmt.Sprintf(`(?i)([\w\s]{0,30})(%s)([\w\s]{0,30})([\d.]+)[%%\s]+(percent|pct)?([\w\s]{0,30})`, keywordPattern))
	} else {
		re = regexp.MustCompile(fmt.Sprintf(`(?i)([\w\s]{0,30})(%s)([\w\s]{0,30})([$]?[\d,]+\.?\d*) ?(million|billion|trillion|M|B|T)?([\w\s]{0,30})`, keywordPattern))
	}

	results := []FinancialValue{}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		raw := strings.NewReplacer(",", "", "$", "").Replace(m[4])
		numeric, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		unit := m[5]
		if !percent {
			numeric *= multiplier(unit)
		}

		context := strings.TrimSpace(m[1] + m[2] + m[3] + m[4] + " " + unit + m[6])
		results = append(results, FinancialValue{
			Keyword:     strings.ToLower(m[2]),
			Value:       numeric,
			Unit:        unit,
			Context:     context,
			TimePeriods: extractContextPeriods(context),
		})
	}
	return results
}

func multiplier(unit string) float64 {
	switch strings.ToLower(unit) {
	case "million", "m":
		return 1e6
	case "billion", "b":
		return 1e9
	case "trillion", "t":
		return 1e12
	default:
		return 1
	}
}

func extractContextPeriods(context string) []string {
	var periods []string
	periods = append(periods, contextYearRe.FindAllString(context, -1)...)
	periods = append(periods, contextQuarterRe.FindAllString(context, -1)...)
	return periods
}
