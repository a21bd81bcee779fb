package clients

import (
	"context"
	"fmt"

	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

// --- Topic classification (/classify-topics, /word-frequencies) ---
type ClassifyReq struct {
	Sentences []string `json:"sentences"`
	Topics    []string `json:"topics"`
}
type ClassifyResp struct {
	Proportions map[string]int `json:"proportions"`
}

type WordFreqReq struct {
	Sentences  []string `json:"sentences"`
	Topic      string   `json:"topic"`
	Vocabulary []string `json:"vocabulary"`
}
type WordFreqResp struct {
	Frequencies map[string]int `json:"frequencies"`
}

func (h *HTTP) ClassifyTopics(ctx context.Context, url string, req ClassifyReq) (*ClassifyResp, error) {
	var out ClassifyResp
	if err := h.postJSON(ctx, "classify topics", url, "/classify-topics", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) WordFrequencies(ctx context.Context, url string, req WordFreqReq) (*WordFreqResp, error) {
	var out WordFreqResp
	if err := h.postJSON(ctx, "word frequencies", url, "/word-frequencies", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoteClassifier delegates topic classification to an external service.
// Results are re-keyed onto the catalog so ordering and vocabulary stay fixed;
// topics the service omits get zero.
type RemoteClassifier struct {
	http    *HTTP
	url     string
	catalog topics.Catalog
}

func NewRemoteClassifier(h *HTTP, url string, catalog topics.Catalog) *RemoteClassifier {
	if len(catalog) == 0 {
		catalog = topics.DefaultCatalog
	}
	return &RemoteClassifier{http: h, url: url, catalog: catalog}
}

func (c *RemoteClassifier) Proportions(ctx context.Context, recs []records.UtteranceRecord) ([]topics.Proportion, error) {
	resp, err := c.http.ClassifyTopics(ctx, c.url, ClassifyReq{
		Sentences: sentences(recs),
		Topics:    c.catalog.Labels(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]topics.Proportion, 0, len(c.catalog))
	for _, t := range c.catalog {
		v := resp.Proportions[t.Label]
		if v < 0 {
			return nil, fmt.Errorf("classify topics: negative proportion %d for %q", v, t.Label)
		}
		out = append(out, topics.Proportion{Topic: t.Label, Value: v})
	}
	return out, nil
}

func (c *RemoteClassifier) WordFrequencies(ctx context.Context, topic string, recs []records.UtteranceRecord) ([]topics.WordFrequency, error) {
	t, ok := c.catalog.Lookup(topic)
	if !ok {
		return nil, &topics.UnknownTopicError{Topic: topic}
	}
	resp, err := c.http.WordFrequencies(ctx, c.url, WordFreqReq{
		Sentences:  sentences(recs),
		Topic:      t.Label,
		Vocabulary: t.Vocabulary,
	})
	if err != nil {
		return nil, err
	}
	out := make([]topics.WordFrequency, 0, len(t.Vocabulary))
	for _, w := range t.Vocabulary {
		out = append(out, topics.WordFrequency{Word: w, Count: resp.Frequencies[w]})
	}
	return out, nil
}

func sentences(recs []records.UtteranceRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Sentence
	}
	return out
}
