package topics

import (
	"context"
	"strings"
	"unicode"

	"github.com/echoogrow/dashboard/records"
)

// KeywordClassifier derives topic weights from the sentences themselves by
// counting case-insensitive hits of each topic's vocabulary.
type KeywordClassifier struct {
	catalog Catalog
}

func NewKeywordClassifier(catalog Catalog) *KeywordClassifier {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	return &KeywordClassifier{catalog: catalog}
}

func (k *KeywordClassifier) Proportions(_ context.Context, recs []records.UtteranceRecord) ([]Proportion, error) {
	counts := tokenCounts(recs)
	out := make([]Proportion, 0, len(k.catalog))
	for _, t := range k.catalog {
		n := 0
		for _, w := range t.Vocabulary {
			n += counts[strings.ToLower(w)]
		}
		out = append(out, Proportion{Topic: t.Label, Value: n})
	}
	return out, nil
}

func (k *KeywordClassifier) WordFrequencies(_ context.Context, topic string, recs []records.UtteranceRecord) ([]WordFrequency, error) {
	t, ok := k.catalog.Lookup(topic)
	if !ok {
		return nil, &UnknownTopicError{Topic: topic}
	}
	counts := tokenCounts(recs)
	out := make([]WordFrequency, 0, len(t.Vocabulary))
	for _, w := range t.Vocabulary {
		out = append(out, WordFrequency{Word: w, Count: counts[strings.ToLower(w)]})
	}
	return out, nil
}

func tokenCounts(recs []records.UtteranceRecord) map[string]int {
	counts := map[string]int{}
	for _, r := range recs {
		for _, tok := range strings.Fields(r.Sentence) {
			tok = strings.TrimFunc(strings.ToLower(tok), func(r rune) bool {
				return unicode.IsPunct(r) || unicode.IsSymbol(r)
			})
			if tok != "" {
				counts[tok]++
			}
		}
	}
	return counts
}
