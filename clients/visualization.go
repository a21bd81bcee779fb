package clients

import (
	"context"
)

// --- Visualization ---
type TrendsReq struct {
	Timestamps       []string          `json:"timestamps"`
	WordCounts       []int             `json:"word_counts"`
	CumulativeWords  []int             `json:"cumulative_words"`
	CumulativeUnique []int             `json:"cumulative_unique_words"`
	SentimentScores  []float64         `json:"sentiment_scores,omitempty"`
	EmotionCounts    map[string]int    `json:"emotion_counts"`
	EmotionColors    map[string]string `json:"emotion_colors,omitempty"`
	TopicProportions map[string]int    `json:"topic_proportions"`
	OutputDir        string            `json:"output_dir,omitempty"`
}

type TrendsResp struct {
	Status string   `json:"status"`
	Paths  []string `json:"paths"`
}

func (h *HTTP) GenerateTrends(ctx context.Context, url string, req TrendsReq) (*TrendsResp, error) {
	var out TrendsResp
	if err := h.postJSON(ctx, "viz trends", url, "/generate-trends", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type WordCloudReq struct {
	Topic       string         `json:"topic"`
	Frequencies map[string]int `json:"frequencies"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Background  string         `json:"background_color"`
	OutputDir   string         `json:"output_dir,omitempty"`
}
type WordCloudResp struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (h *HTTP) GenerateWordCloud(ctx context.Context, url string, req WordCloudReq) (*WordCloudResp, error) {
	if req.Width == 0 {
		req.Width = 400
	}
	if req.Height == 0 {
		req.Height = 200
	}
	if req.Background == "" {
		req.Background = "white"
	}
	var out WordCloudResp
	if err := h.postJSON(ctx, "viz wordcloud", url, "/generate-wordcloud", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
