// Package metrics derives per-row language metrics and the aggregate
// summary from a timestamp-ordered record sequence.
package metrics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

// DefaultEmotionOrder is the canonical label order. It breaks ties when
// picking the dominant emotion and orders the emotion histogram.
var DefaultEmotionOrder = []string{"Joy", "Sadness", "Anger", "Neutral", "Fear", "Disgust", "Excitement"}

// TopTopicCount is how many topics the summary ranks.
const TopTopicCount = 2

type DerivedRow struct {
	Time                      time.Time `json:"time"`
	Emotion                   string    `json:"emotion"`
	SentimentScore            float64   `json:"sentiment_score"`
	WordCount                 int       `json:"word_count"`
	UniqueWordCount           int       `json:"unique_word_count"`
	CumulativeWordCount       int       `json:"cumulative_word_count"`
	CumulativeUniqueWordCount int       `json:"cumulative_unique_word_count"`
}

type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// Summary is the aggregate view over all rows of one render.
type Summary struct {
	Rows              int                 `json:"rows"`
	TotalWords        int                 `json:"total_words"`
	AvgSentenceLength float64             `json:"avg_sentence_length"`
	DominantEmotion   string              `json:"dominant_emotion"`
	EmotionCounts     []EmotionCount      `json:"emotion_counts"`
	TopicProportions  []topics.Proportion `json:"topic_proportions"`
	TopTopics         []string            `json:"top_topics"`
}

type Result struct {
	Rows    []DerivedRow `json:"rows"`
	Summary Summary      `json:"summary"`
}

type EmptyDatasetError struct {
	Op string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: dataset has no rows", e.Op)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(sentence string) int {
	return len(strings.Fields(sentence))
}

// UniqueWordCount counts distinct whitespace-delimited tokens, case-sensitive.
func UniqueWordCount(sentence string) int {
	seen := map[string]struct{}{}
	for _, tok := range strings.Fields(sentence) {
		seen[tok] = struct{}{}
	}
	return len(seen)
}

// Derive computes per-row counts and running sums in input order.
func Derive(recs []records.UtteranceRecord) []DerivedRow {
	rows := make([]DerivedRow, len(recs))
	var cumWords, cumUnique int
	for i, r := range recs {
		wc := WordCount(r.Sentence)
		uc := UniqueWordCount(r.Sentence)
		cumWords += wc
		cumUnique += uc
		rows[i] = DerivedRow{
			Time:                      r.Time,
			Emotion:                   r.Emotion,
			SentimentScore:            r.SentimentScore,
			WordCount:                 wc,
			UniqueWordCount:           uc,
			CumulativeWordCount:       cumWords,
			CumulativeUniqueWordCount: cumUnique,
		}
	}
	return rows
}

// AvgSentenceLength is the mean word count rounded to two decimals.
func AvgSentenceLength(rows []DerivedRow) (float64, error) {
	if len(rows) == 0 {
		return 0, &EmptyDatasetError{Op: "average sentence length"}
	}
	total := 0
	for _, r := range rows {
		total += r.WordCount
	}
	return round2(float64(total) / float64(len(rows))), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EmotionHistogram counts labels. Labels of order come first in that order,
// followed by unlisted labels in first-appearance order. Listed labels that
// never occur are omitted.
func EmotionHistogram(recs []records.UtteranceRecord, order []string) []EmotionCount {
	counts := map[string]int{}
	var extra []string
	rank := make(map[string]struct{}, len(order))
	for _, l := range order {
		rank[l] = struct{}{}
	}
	for _, r := range recs {
		if _, seen := counts[r.Emotion]; !seen {
			if _, listed := rank[r.Emotion]; !listed {
				extra = append(extra, r.Emotion)
			}
		}
		counts[r.Emotion]++
	}

	out := make([]EmotionCount, 0, len(counts))
	for _, l := range order {
		if n, ok := counts[l]; ok {
			out = append(out, EmotionCount{Emotion: l, Count: n})
			delete(counts, l)
		}
	}
	for _, l := range extra {
		out = append(out, EmotionCount{Emotion: l, Count: counts[l]})
	}
	return out
}

// DominantEmotion is the most frequent label; ties go to the label that
// comes first in the histogram order.
func DominantEmotion(recs []records.UtteranceRecord, order []string) (string, error) {
	if len(recs) == 0 {
		return "", &EmptyDatasetError{Op: "dominant emotion"}
	}
	best := EmotionCount{Count: -1}
	for _, c := range EmotionHistogram(recs, order) {
		if c.Count > best.Count {
			best = c
		}
	}
	return best.Emotion, nil
}

// Calculator turns records into derived rows and a summary.
type Calculator struct {
	Classifier   topics.Classifier
	EmotionOrder []string
}

func (c *Calculator) Compute(ctx context.Context, recs []records.UtteranceRecord) (Result, error) {
	order := c.EmotionOrder
	if len(order) == 0 {
		order = DefaultEmotionOrder
	}

	rows := Derive(recs)
	avg, err := AvgSentenceLength(rows)
	if err != nil {
		return Result{}, err
	}
	dominant, err := DominantEmotion(recs, order)
	if err != nil {
		return Result{}, err
	}

	props, err := c.Classifier.Proportions(ctx, recs)
	if err != nil {
		return Result{}, fmt.Errorf("topic proportions: %w", err)
	}
	top := topics.Top(props, TopTopicCount)
	topLabels := make([]string, len(top))
	for i, p := range top {
		topLabels[i] = p.Topic
	}

	total := 0
	if len(rows) > 0 {
		total = rows[len(rows)-1].CumulativeWordCount
	}
	return Result{
		Rows: rows,
		Summary: Summary{
			Rows:              len(rows),
			TotalWords:        total,
			AvgSentenceLength: avg,
			DominantEmotion:   dominant,
			EmotionCounts:     EmotionHistogram(recs, order),
			TopicProportions:  props,
			TopTopics:         topLabels,
		},
	}, nil
}
