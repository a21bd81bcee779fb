package metrics

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func scenario() []records.UtteranceRecord {
	return []records.UtteranceRecord{
		{Time: day(1), Sentence: "I see a cat", Emotion: "Joy", SentimentScore: 0.8},
		{Time: day(2), Sentence: "I see two cats today", Emotion: "Joy", SentimentScore: 0.6},
	}
}

type fixedClassifier struct {
	props []topics.Proportion
	err   error
}

func (f fixedClassifier) Proportions(context.Context, []records.UtteranceRecord) ([]topics.Proportion, error) {
	return f.props, f.err
}

func (f fixedClassifier) WordFrequencies(context.Context, string, []records.UtteranceRecord) ([]topics.WordFrequency, error) {
	return nil, nil
}

func TestWordCounts(t *testing.T) {
	tests := []struct {
		sentence string
		words    int
		unique   int
	}{
		{"I see a cat", 4, 4},
		{"", 0, 0},
		{"   ", 0, 0},
		{"the cat the dog", 4, 3},
		{"Cat cat", 2, 2},
		{"tab\tand\nnewline", 3, 3},
		{"我 看见 猫", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			assert.Equal(t, tt.words, WordCount(tt.sentence))
			assert.Equal(t, tt.unique, UniqueWordCount(tt.sentence))
		})
	}
}

func TestDerive(t *testing.T) {
	t.Run("Two row scenario", func(t *testing.T) {
		rows := Derive(scenario())

		require.Len(t, rows, 2)
		assert.Equal(t, 4, rows[0].WordCount)
		assert.Equal(t, 5, rows[1].WordCount)
		assert.Equal(t, 4, rows[0].CumulativeWordCount)
		assert.Equal(t, 9, rows[1].CumulativeWordCount)
		assert.Equal(t, 4, rows[0].UniqueWordCount)
		assert.Equal(t, 5, rows[1].UniqueWordCount)
		assert.Equal(t, 9, rows[1].CumulativeUniqueWordCount)
		assert.Equal(t, day(2), rows[1].Time)
		assert.InDelta(t, 0.6, rows[1].SentimentScore, 1e-9)
	})

	t.Run("Cumulative invariants hold", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(7))
		vocab := []string{"a", "b", "c", "cat", "dog", "Dog"}
		recs := make([]records.UtteranceRecord, 200)
		for i := range recs {
			n := rnd.Intn(8)
			words := make([]string, n)
			for j := range words {
				words[j] = vocab[rnd.Intn(len(vocab))]
			}
			recs[i] = records.UtteranceRecord{Time: day(1).Add(time.Duration(i) * time.Hour), Sentence: strings.Join(words, " ")}
		}

		rows := Derive(recs)
		prefix := 0
		for i, r := range rows {
			prefix += r.WordCount
			assert.Equal(t, prefix, r.CumulativeWordCount)
			assert.LessOrEqual(t, r.UniqueWordCount, r.WordCount)
			assert.LessOrEqual(t, r.CumulativeUniqueWordCount, r.CumulativeWordCount)
			if i > 0 {
				assert.GreaterOrEqual(t, r.CumulativeWordCount, rows[i-1].CumulativeWordCount)
				assert.GreaterOrEqual(t, r.CumulativeUniqueWordCount, rows[i-1].CumulativeUniqueWordCount)
			}
		}
	})

	t.Run("Empty sentence", func(t *testing.T) {
		rows := Derive([]records.UtteranceRecord{{Sentence: ""}})
		assert.Equal(t, 0, rows[0].WordCount)
		assert.Equal(t, 0, rows[0].UniqueWordCount)
	})
}

func TestAvgSentenceLength(t *testing.T) {
	avg, err := AvgSentenceLength(Derive(scenario()))
	require.NoError(t, err)
	assert.Equal(t, 4.5, avg)

	avg, err = AvgSentenceLength([]DerivedRow{{WordCount: 1}, {WordCount: 1}, {WordCount: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1.33, avg)

	_, err = AvgSentenceLength(nil)
	var ede *EmptyDatasetError
	assert.True(t, errors.As(err, &ede))
}

func TestDominantEmotion(t *testing.T) {
	recs := func(labels ...string) []records.UtteranceRecord {
		out := make([]records.UtteranceRecord, len(labels))
		for i, l := range labels {
			out[i] = records.UtteranceRecord{Emotion: l}
		}
		return out
	}

	t.Run("Mode wins", func(t *testing.T) {
		got, err := DominantEmotion(recs("Fear", "Joy", "Fear"), DefaultEmotionOrder)
		require.NoError(t, err)
		assert.Equal(t, "Fear", got)
	})

	t.Run("Ties use canonical order, not appearance", func(t *testing.T) {
		got, err := DominantEmotion(recs("Fear", "Anger", "Anger", "Fear"), DefaultEmotionOrder)
		require.NoError(t, err)
		assert.Equal(t, "Anger", got)
	})

	t.Run("Unlisted labels rank after listed ones", func(t *testing.T) {
		got, err := DominantEmotion(recs("Curious", "Joy"), DefaultEmotionOrder)
		require.NoError(t, err)
		assert.Equal(t, "Joy", got)

		got, err = DominantEmotion(recs("Curious", "Bored"), DefaultEmotionOrder)
		require.NoError(t, err)
		assert.Equal(t, "Curious", got)
	})

	t.Run("Deterministic across runs", func(t *testing.T) {
		in := recs("Sadness", "Joy", "Neutral", "Joy", "Sadness", "Neutral")
		first, _ := DominantEmotion(in, DefaultEmotionOrder)
		for i := 0; i < 20; i++ {
			got, _ := DominantEmotion(in, DefaultEmotionOrder)
			assert.Equal(t, first, got)
		}
		assert.Equal(t, "Joy", first)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := DominantEmotion(nil, DefaultEmotionOrder)
		var ede *EmptyDatasetError
		assert.True(t, errors.As(err, &ede))
	})
}

func TestEmotionHistogram(t *testing.T) {
	in := []records.UtteranceRecord{{Emotion: "Zany"}, {Emotion: "Fear"}, {Emotion: "Joy"}, {Emotion: "Fear"}}
	got := EmotionHistogram(in, DefaultEmotionOrder)

	assert.Equal(t, []EmotionCount{{"Joy", 1}, {"Fear", 2}, {"Zany", 1}}, got)
}

func TestCalculatorCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("Scenario summary", func(t *testing.T) {
		calc := &Calculator{Classifier: fixedClassifier{props: []topics.Proportion{
			{Topic: "识字", Value: 12}, {Topic: "数学", Value: 33}, {Topic: "认识世界", Value: 33}, {Topic: "艺术与设计", Value: 10},
		}}}
		res, err := calc.Compute(ctx, scenario())
		require.NoError(t, err)

		s := res.Summary
		assert.Equal(t, 2, s.Rows)
		assert.Equal(t, 9, s.TotalWords)
		assert.Equal(t, 4.5, s.AvgSentenceLength)
		assert.Equal(t, "Joy", s.DominantEmotion)
		assert.Equal(t, []string{"数学", "认识世界"}, s.TopTopics)
		assert.Len(t, s.TopicProportions, 4)
		assert.Equal(t, []EmotionCount{{"Joy", 2}}, s.EmotionCounts)
		assert.Len(t, res.Rows, 2)
	})

	t.Run("Top topics with seeded mock", func(t *testing.T) {
		for seed := int64(0); seed < 30; seed++ {
			calc := &Calculator{Classifier: topics.NewMockClassifier(nil, rand.New(rand.NewSource(seed)))}
			res, err := calc.Compute(ctx, scenario())
			require.NoError(t, err)

			require.Len(t, res.Summary.TopTopics, 2)
			values := map[string]int{}
			for _, p := range res.Summary.TopicProportions {
				values[p.Topic] = p.Value
			}
			assert.GreaterOrEqual(t, values[res.Summary.TopTopics[0]], values[res.Summary.TopTopics[1]])
		}
	})

	t.Run("Empty dataset", func(t *testing.T) {
		calc := &Calculator{Classifier: fixedClassifier{}}
		_, err := calc.Compute(ctx, nil)

		var ede *EmptyDatasetError
		assert.True(t, errors.As(err, &ede))
	})

	t.Run("Classifier failure propagates", func(t *testing.T) {
		boom := errors.New("boom")
		calc := &Calculator{Classifier: fixedClassifier{err: boom}}
		_, err := calc.Compute(ctx, scenario())

		assert.ErrorIs(t, err, boom)
	})
}
