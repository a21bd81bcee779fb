package topics

import (
	"context"
	"math/rand"

	"github.com/echoogrow/dashboard/records"
)

// Ranges of the synthetic generator, inclusive.
const (
	MockProportionMin = 10
	MockProportionMax = 40
	MockFrequencyMin  = 5
	MockFrequencyMax  = 20
)

// MockClassifier generates demo data. Its output does not depend on the
// records at all; it only stands in until a real classifier is configured.
// A MockClassifier is not safe for concurrent use because *rand.Rand is not.
type MockClassifier struct {
	catalog Catalog
	rnd     *rand.Rand
}

func NewMockClassifier(catalog Catalog, rnd *rand.Rand) *MockClassifier {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	return &MockClassifier{catalog: catalog, rnd: rnd}
}

func (m *MockClassifier) Proportions(_ context.Context, _ []records.UtteranceRecord) ([]Proportion, error) {
	out := make([]Proportion, 0, len(m.catalog))
	for _, t := range m.catalog {
		out = append(out, Proportion{Topic: t.Label, Value: m.between(MockProportionMin, MockProportionMax)})
	}
	return out, nil
}

func (m *MockClassifier) WordFrequencies(_ context.Context, topic string, _ []records.UtteranceRecord) ([]WordFrequency, error) {
	t, ok := m.catalog.Lookup(topic)
	if !ok {
		return nil, &UnknownTopicError{Topic: topic}
	}
	out := make([]WordFrequency, 0, len(t.Vocabulary))
	for _, w := range t.Vocabulary {
		out = append(out, WordFrequency{Word: w, Count: m.between(MockFrequencyMin, MockFrequencyMax)})
	}
	return out, nil
}

func (m *MockClassifier) between(lo, hi int) int {
	return lo + m.rnd.Intn(hi-lo+1)
}
