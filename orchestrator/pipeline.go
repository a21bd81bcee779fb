package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/echoogrow/dashboard/clients"
	cfg "github.com/echoogrow/dashboard/config"
	"github.com/echoogrow/dashboard/logging"
	"github.com/echoogrow/dashboard/metrics"
	"github.com/echoogrow/dashboard/narrator"
	"github.com/echoogrow/dashboard/records"
	"github.com/echoogrow/dashboard/topics"
)

type Pipeline struct {
	cfg        *cfg.Root
	http       *clients.HTTP
	log        *logrus.Entry
	narrator   *narrator.Narrator
	classifier func(*rand.Rand) topics.Classifier
	name       string
	now        func() time.Time
}

type Option func(*Pipeline)

// WithClassifier replaces the configured topic classifier. c is shared by
// every render and must be safe for concurrent use; use WithClassifierFactory
// for stateful classifiers such as a MockClassifier.
func WithClassifier(c topics.Classifier) Option {
	return func(p *Pipeline) {
		p.classifier = func(*rand.Rand) topics.Classifier { return c }
		p.name = classifierName(c)
	}
}

// WithClassifierFactory builds a classifier per render from that render's
// random source. f is also called once up front to name the classifier.
func WithClassifierFactory(f func(*rand.Rand) topics.Classifier) Option {
	return func(p *Pipeline) {
		p.classifier = f
		p.name = classifierName(f(rand.New(rand.NewSource(1))))
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(p *Pipeline) { p.log = l.WithField("component", "pipeline") }
}

func WithHTTP(h *clients.HTTP) Option {
	return func(p *Pipeline) { p.http = h }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(c *cfg.Root, opts ...Option) (*Pipeline, error) {
	n, err := narrator.New(c.Dashboard.Language)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:      c,
		http:     clients.NewHTTP(),
		log:      logging.Discard().WithField("component", "pipeline"),
		narrator: n,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.classifier == nil {
		switch c.Topics.Classifier {
		case "keyword":
			WithClassifier(topics.NewKeywordClassifier(c.Topics.Catalog))(p)
		case "remote":
			WithClassifier(clients.NewRemoteClassifier(p.http, c.Services.Topics.URL, c.Topics.Catalog))(p)
		default:
			catalog := c.Topics.Catalog
			p.classifier = func(rnd *rand.Rand) topics.Classifier { return topics.NewMockClassifier(catalog, rnd) }
			p.name = "mock"
		}
	}
	return p, nil
}

// ClassifierName is the configured classifier, or "custom" for an injected one.
func (p *Pipeline) ClassifierName() string { return p.name }

func classifierName(c topics.Classifier) string {
	switch c.(type) {
	case *topics.MockClassifier:
		return "mock"
	case *topics.KeywordClassifier:
		return "keyword"
	case *clients.RemoteClassifier:
		return "remote"
	default:
		return "custom"
	}
}

// newRand seeds a fresh source per render so concurrent renders share no state.
func (p *Pipeline) newRand() *rand.Rand {
	seed := p.cfg.Topics.Seed
	if seed == 0 {
		seed = p.now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Run loads source and computes one dashboard. topic selects the word
// frequency topic; empty means the first catalog topic.
func (p *Pipeline) Run(ctx context.Context, source, topic string) (*Dashboard, error) {
	start := p.now()
	log := p.log.WithField("source", source)

	opts, err := p.cfg.LoaderOptions()
	if err != nil {
		return nil, err
	}
	ds, err := records.Load(source, opts)
	if err != nil {
		log.WithError(err).Error("load failed")
		return nil, err
	}
	log.WithField("rows", len(ds.Records)).Debug("records loaded")

	rnd := p.newRand()
	cls := p.classifier(rnd)
	calc := metrics.Calculator{Classifier: cls, EmotionOrder: p.cfg.EmotionOrder}
	res, err := calc.Compute(ctx, ds.Records)
	if err != nil {
		log.WithError(err).Error("metrics failed")
		return nil, err
	}

	exemplar := narrator.PickExemplar(rnd, ds.Emotions(), res.Summary.DominantEmotion)
	narrative, err := p.narrator.Narrate(narrator.Input{
		ChildName:       p.cfg.Dashboard.ChildName,
		Summary:         res.Summary,
		ExemplarEmotion: exemplar,
	})
	if err != nil {
		log.WithError(err).Error("narrative failed")
		return nil, err
	}

	labels := p.cfg.Topics.Catalog.Labels()
	if topic == "" && len(labels) > 0 {
		topic = labels[0]
	}
	freqs, err := cls.WordFrequencies(ctx, topic, ds.Records)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Warn("word frequencies failed")
		return nil, err
	}

	d := &Dashboard{
		ID:              uuid.NewString(),
		GeneratedAt:     start,
		Title:           p.cfg.Dashboard.Name,
		Source:          source,
		ChildName:       p.cfg.Dashboard.ChildName,
		HasSentiment:    ds.HasSentiment,
		Classifier:      p.ClassifierName(),
		Rows:            res.Rows,
		Summary:         res.Summary,
		Narrative:       narrative,
		ExemplarEmotion: exemplar,
		Topics:          labels,
		SelectedTopic:   topic,
		WordFrequencies: freqs,
	}
	log.WithFields(logrus.Fields{
		"id":          d.ID,
		"rows":        d.Summary.Rows,
		"total_words": d.Summary.TotalWords,
		"elapsed":     p.now().Sub(start).String(),
	}).Info("dashboard rendered")
	return d, nil
}

// WordFrequencies renders source and returns only the frequencies for topic.
// It shares Run's random stream, so a fixed seed matches the full dashboard.
func (p *Pipeline) WordFrequencies(ctx context.Context, source, topic string) ([]topics.WordFrequency, error) {
	d, err := p.Run(ctx, source, topic)
	if err != nil {
		return nil, err
	}
	return d.WordFrequencies, nil
}
