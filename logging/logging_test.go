package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Text output respects level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New("warn", "text", &buf)
		require.NoError(t, err)

		log.Info("hidden")
		log.WithField("component", "loader").Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
		assert.Contains(t, out, "component=loader")
	})

	t.Run("JSON output", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New("debug", "json", &buf)
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, log.GetLevel())

		log.WithField("rows", 3).Debug("loaded")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "loaded", entry["msg"])
		assert.Equal(t, float64(3), entry["rows"])
	})

	t.Run("Rejects unknown level and format", func(t *testing.T) {
		_, err := New("loud", "text", &bytes.Buffer{})
		assert.Error(t, err)

		_, err = New("info", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
