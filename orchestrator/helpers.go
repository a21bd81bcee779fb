package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/echoogrow/dashboard/clients"
)

// EmotionColors is the palette of the emotion distribution chart.
var EmotionColors = map[string]string{
	"Joy":        "#5cd6c4",
	"Sadness":    "#e6d5f4",
	"Anger":      "#EF8985",
	"Neutral":    "#eec843",
	"Fear":       "#a8d5e2",
	"Disgust":    "#d4a5a5",
	"Excitement": "#ffcc99",
}

func trendsRequest(d *Dashboard, outDir string) clients.TrendsReq {
	req := clients.TrendsReq{
		Timestamps:       make([]string, len(d.Rows)),
		WordCounts:       make([]int, len(d.Rows)),
		CumulativeWords:  make([]int, len(d.Rows)),
		CumulativeUnique: make([]int, len(d.Rows)),
		EmotionCounts:    make(map[string]int, len(d.Summary.EmotionCounts)),
		EmotionColors:    EmotionColors,
		TopicProportions: make(map[string]int, len(d.Summary.TopicProportions)),
		OutputDir:        outDir,
	}
	if d.HasSentiment {
		req.SentimentScores = make([]float64, len(d.Rows))
	}
	for i, r := range d.Rows {
		req.Timestamps[i] = r.Time.Format(time.RFC3339)
		req.WordCounts[i] = r.WordCount
		req.CumulativeWords[i] = r.CumulativeWordCount
		req.CumulativeUnique[i] = r.CumulativeUniqueWordCount
		if d.HasSentiment {
			req.SentimentScores[i] = r.SentimentScore
		}
	}
	for _, e := range d.Summary.EmotionCounts {
		req.EmotionCounts[e.Emotion] = e.Count
	}
	for _, p := range d.Summary.TopicProportions {
		req.TopicProportions[p.Topic] = p.Value
	}
	return req
}

func wordCloudRequest(d *Dashboard, outDir string) clients.WordCloudReq {
	freqs := make(map[string]int, len(d.WordFrequencies))
	for _, f := range d.WordFrequencies {
		freqs[f.Word] = f.Count
	}
	return clients.WordCloudReq{Topic: d.SelectedTopic, Frequencies: freqs, OutputDir: outDir}
}

// RenderResult lists the chart files produced by the visualization service.
type RenderResult struct {
	Trends    []string `json:"trends"`
	WordCloud string   `json:"word_cloud"`
}

// Render pushes d to the visualization service, which writes images under outDir.
func (p *Pipeline) Render(ctx context.Context, d *Dashboard, outDir string) (*RenderResult, error) {
	url := p.cfg.Services.Visualization.URL
	if url == "" {
		return nil, errors.New("services.visualization.url is not configured")
	}
	tr, err := p.http.GenerateTrends(ctx, url, trendsRequest(d, outDir))
	if err != nil {
		return nil, err
	}
	wc, err := p.http.GenerateWordCloud(ctx, url, wordCloudRequest(d, outDir))
	if err != nil {
		return nil, err
	}
	p.log.WithField("id", d.ID).WithField("files", len(tr.Paths)+1).Info("charts rendered")
	return &RenderResult{Trends: tr.Paths, WordCloud: wc.Path}, nil
}
