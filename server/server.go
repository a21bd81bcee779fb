// Package server serves the dashboard page and its JSON API over echo.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/echoogrow/dashboard/orchestrator"
	"github.com/echoogrow/dashboard/topics"
)

// Renderer produces one dashboard for a source and selected topic.
type Renderer interface {
	Run(ctx context.Context, source, topic string) (*orchestrator.Dashboard, error)
}

type Server struct {
	e      *echo.Echo
	r      Renderer
	source string
	cache  *renderCache
	log    *logrus.Entry
}

// New wires routes for source. cacheSize 0 disables the render cache.
func New(r Renderer, source string, cacheSize int, logger *logrus.Logger) (*Server, error) {
	cache, err := newRenderCache(cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		e:      echo.New(),
		r:      r,
		source: source,
		cache:  cache,
		log:    logger.WithField("component", "server"),
	}
	s.e.HideBanner = true
	s.e.HidePort = true

	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogError:   true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request completed")
			return nil
		},
	}))
	s.e.Use(middleware.Recover())

	s.e.GET("/", s.handlePage)
	s.e.GET("/api/dashboard", s.handleDashboard)
	s.e.GET("/api/rows", s.handleRows)
	s.e.GET("/api/summary", s.handleSummary)
	s.e.GET("/api/topics/:topic/words", s.handleWords)
	s.e.GET("/healthz", s.handleHealth)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.WithFields(logrus.Fields{"addr": addr, "source": s.source}).Info("dashboard server starting")
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// render runs one dashboard render, served from the cache when the source is unchanged.
func (s *Server) render(ctx context.Context, topic string) (*orchestrator.Dashboard, error) {
	key, cacheable := s.cache.key(s.source, topic)
	if cacheable {
		if d, ok := s.cache.get(key); ok {
			CacheHits.Inc()
			return d, nil
		}
	}

	start := time.Now()
	d, err := s.r.Run(ctx, s.source, topic)
	RecordRender(err, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.add(key, d)
	}
	return d, nil
}

// errorStatus maps render failures onto HTTP codes; anything but an unknown
// topic is a failed render.
func errorStatus(err error) int {
	var ute *topics.UnknownTopicError
	if errors.As(err, &ute) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func apiError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), errorBody{Error: err.Error(), Status: statusOf(err)})
}

func (s *Server) handleDashboard(c echo.Context) error {
	d, err := s.render(c.Request().Context(), c.QueryParam("topic"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleRows(c echo.Context) error {
	d, err := s.render(c.Request().Context(), "")
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, d.Rows)
}

type summaryBody struct {
	Summary         any    `json:"summary"`
	Narrative       string `json:"narrative"`
	NarrativeParts  any    `json:"narrative_parts"`
	ExemplarEmotion string `json:"exemplar_emotion"`
	Synthetic       bool   `json:"synthetic_topics"`
}

func (s *Server) handleSummary(c echo.Context) error {
	d, err := s.render(c.Request().Context(), "")
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, summaryBody{
		Summary:         d.Summary,
		Narrative:       d.Narrative.String(),
		NarrativeParts:  d.Narrative.Parts,
		ExemplarEmotion: d.ExemplarEmotion,
		Synthetic:       d.Synthetic(),
	})
}

type wordsBody struct {
	Topic     string                 `json:"topic"`
	Words     []topics.WordFrequency `json:"words"`
	Synthetic bool                   `json:"synthetic"`
}

func (s *Server) handleWords(c echo.Context) error {
	// echo routes on RawPath when it is set, leaving params escaped.
	topic := c.Param("topic")
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(topic)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Status: "bad_request"})
		}
		topic = unescaped
	}
	d, err := s.render(c.Request().Context(), topic)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, wordsBody{Topic: d.SelectedTopic, Words: d.WordFrequencies, Synthetic: d.Synthetic()})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "cached": s.cache.len()})
}
