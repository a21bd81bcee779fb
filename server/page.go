package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echoogrow/dashboard/orchestrator"
)

//go:embed page.html.tmpl
var pageSource string

var page = template.Must(template.New("page").Parse(pageSource))

type bar struct {
	Label string
	Value int
	Width int
	Color string
}

type pageView struct {
	D        *orchestrator.Dashboard
	Emotions []bar
	Topics   []bar
	Words    []bar
	Error    string
}

// bars scales values to a 0-100 width against the largest value.
func bars(labels []string, values []int, color func(string) string) []bar {
	top := 0
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	out := make([]bar, len(labels))
	for i, l := range labels {
		w := 0
		if top > 0 {
			w = values[i] * 100 / top
		}
		out[i] = bar{Label: l, Value: values[i], Width: w, Color: color(l)}
	}
	return out
}

func emotionColor(label string) string {
	if c, ok := orchestrator.EmotionColors[label]; ok {
		return c
	}
	return "#cccccc"
}

func newPageView(d *orchestrator.Dashboard) pageView {
	v := pageView{D: d}

	var labels []string
	var values []int
	for _, e := range d.Summary.EmotionCounts {
		labels, values = append(labels, e.Emotion), append(values, e.Count)
	}
	v.Emotions = bars(labels, values, emotionColor)

	labels, values = nil, nil
	for _, p := range d.Summary.TopicProportions {
		labels, values = append(labels, p.Topic), append(values, p.Value)
	}
	v.Topics = bars(labels, values, func(string) string { return "#5cd6c4" })

	labels, values = nil, nil
	for _, w := range d.WordFrequencies {
		labels, values = append(labels, w.Word), append(values, w.Count)
	}
	v.Words = bars(labels, values, func(string) string { return "#eec843" })
	return v
}

func (s *Server) handlePage(c echo.Context) error {
	d, err := s.render(c.Request().Context(), c.QueryParam("topic"))
	status := http.StatusOK
	view := pageView{}
	if err != nil {
		status = errorStatus(err)
		view.Error = err.Error()
	} else {
		view = newPageView(d)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
