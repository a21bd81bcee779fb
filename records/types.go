package records

import "time"

// Column names expected from existing data producers.
const (
	ColTime      = "time"
	ColSentence  = "sentence"
	ColEmotion   = "emotion"
	ColSentiment = "sentiment_score"
)

type UtteranceRecord struct {
	Time           time.Time `json:"time"`
	Sentence       string    `json:"sentence"`
	Emotion        string    `json:"emotion"`
	SentimentScore float64   `json:"sentiment_score"`
}

// Dataset is the loaded, ordered record sequence of one source.
type Dataset struct {
	Source       string            `json:"source"`
	Records      []UtteranceRecord `json:"records"`
	HasSentiment bool              `json:"has_sentiment"`
}

// Emotions returns the distinct emotion labels in first-appearance order.
func (d *Dataset) Emotions() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range d.Records {
		if _, ok := seen[r.Emotion]; ok {
			continue
		}
		seen[r.Emotion] = struct{}{}
		out = append(out, r.Emotion)
	}
	return out
}
