package orchestrator

import (
	"time"

	"github.com/echoogrow/dashboard/metrics"
	"github.com/echoogrow/dashboard/narrator"
	"github.com/echoogrow/dashboard/topics"
)

// Dashboard is everything one render hands to the presentation layer.
type Dashboard struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	ChildName    string    `json:"child_name"`
	HasSentiment bool      `json:"has_sentiment"`
	// Classifier names the topic classifier; "mock" marks topic data as synthetic.
	Classifier string `json:"classifier"`

	Rows            []metrics.DerivedRow `json:"rows"`
	Summary         metrics.Summary      `json:"summary"`
	Narrative       narrator.Narrative   `json:"narrative"`
	ExemplarEmotion string               `json:"exemplar_emotion"`

	Topics          []string               `json:"topics"`
	SelectedTopic   string                 `json:"selected_topic"`
	WordFrequencies []topics.WordFrequency `json:"word_frequencies"`
}

// Synthetic reports whether topic proportions and word frequencies are demo data.
func (d *Dashboard) Synthetic() bool { return d.Classifier == "mock" }
