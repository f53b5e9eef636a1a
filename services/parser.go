package services

import (
	"strings"

	"realty-analyzer/models"
)

const (
	keywordCompare = "compare"
	keywordAnalyze = "analyze"
	areaSeparator  = " and "
)

// ParseQuery turns a raw query into an Intent. Matching is case-insensitive
// and areas are returned lower-cased and trimmed. An Analyze query with no
// area is accepted; the lookup reports it as having no data.
func ParseQuery(raw string) (models.Intent, error) {
	q := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(q, keywordCompare):
		if !strings.Contains(q, areaSeparator) {
			return models.Intent{}, errMissingAnd()
		}
		rest := strings.TrimSpace(strings.TrimPrefix(q, keywordCompare))
		parts := strings.Split(rest, areaSeparator)
		if len(parts) != 2 {
			return models.Intent{}, errNeedTwoAreas()
		}
		a1, a2 := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if a1 == "" || a2 == "" {
			return models.Intent{}, errNeedTwoAreas()
		}
		return models.Intent{Kind: models.IntentCompare, Area1: a1, Area2: a2}, nil

	case strings.HasPrefix(q, keywordAnalyze):
		area := strings.TrimSpace(strings.TrimPrefix(q, keywordAnalyze))
		return models.Intent{Kind: models.IntentAnalyze, Area: area}, nil

	default:
		return models.Intent{}, errUnsupported()
	}
}
