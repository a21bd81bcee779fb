// Package topics holds the fixed topic catalog and the classifiers that
// assign topic proportions and per-topic word frequencies to a dataset.
package topics

import (
	"context"
	"fmt"
	"sort"

	"github.com/echoogrow/dashboard/records"
)

type Topic struct {
	Label      string   `json:"label" yaml:"label" mapstructure:"label"`
	Vocabulary []string `json:"vocabulary" yaml:"vocabulary" mapstructure:"vocabulary"`
}

// Catalog is an ordered topic enumeration. Its order breaks ranking ties.
type Catalog []Topic

// DefaultCatalog is the built-in topic set: literacy, maths, knowing the world, art and design.
var DefaultCatalog = Catalog{
	{Label: "识字", Vocabulary: []string{"reading", "writing", "books", "story", "alphabet"}},
	{Label: "数学", Vocabulary: []string{"numbers", "counting", "addition", "subtraction", "shapes"}},
	{Label: "认识世界", Vocabulary: []string{"animals", "plants", "weather", "seasons", "space"}},
	{Label: "艺术与设计", Vocabulary: []string{"painting", "sketching", "music", "dancing", "colors"}},
}

func (c Catalog) Labels() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.Label
	}
	return out
}

func (c Catalog) Lookup(label string) (Topic, bool) {
	for _, t := range c {
		if t.Label == label {
			return t, true
		}
	}
	return Topic{}, false
}

type Proportion struct {
	Topic string `json:"topic"`
	Value int    `json:"value"`
}

type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Classifier assigns topic proportions and word frequencies. Implementations
// return proportions in catalog order.
type Classifier interface {
	Proportions(ctx context.Context, recs []records.UtteranceRecord) ([]Proportion, error)
	WordFrequencies(ctx context.Context, topic string, recs []records.UtteranceRecord) ([]WordFrequency, error)
}

type UnknownTopicError struct {
	Topic string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("unknown topic %q", e.Topic)
}

// Top returns the n highest proportions, highest first. Equal values keep input order.
func Top(props []Proportion, n int) []Proportion {
	sorted := append([]Proportion(nil), props...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
