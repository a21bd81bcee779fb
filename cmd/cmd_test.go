package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/echoogrow/dashboard/orchestrator"
)

const sampleCSV = `time,sentence,emotion,sentiment_score
2024-03-01 09:00:00,I like big dogs,Joy,0.8
2024-03-02 09:00:00,the dog is very big,Joy,0.6
2024-03-03 09:00:00,no more numbers,Anger,-0.4
`

const sampleConfig = `dashboard:
  child_name: Mimi
  language: en
topics:
  seed: 21
logging:
  level: warn
`

// setupCmdTest resets flag state shared across Execute calls and returns
// paths to a config file and a source file.
func setupCmdTest(t *testing.T) (string, string) {
	t.Helper()
	cfgFile, source, verbose = "", "", false
	reportTopic, reportJSON, reportOut, reportRender, reportNoColor = "", false, "", false, false
	serveAddr = ""

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	srcPath := filepath.Join(dir, "child_report.csv")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sampleConfig), 0o644))
	require.NoError(t, os.WriteFile(srcPath, []byte(sampleCSV), 0o644))
	return cfgPath, srcPath
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Run("Help", func(t *testing.T) {
		setupCmdTest(t)
		out, _, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "echoogrow")
	})

	t.Run("Unknown command", func(t *testing.T) {
		setupCmdTest(t)
		_, _, err := execute(t, "nonexistent-command")
		assert.Error(t, err)
	})

	t.Run("Missing config file", func(t *testing.T) {
		setupCmdTest(t)
		_, _, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfigCmd(t *testing.T) {
	cfgPath, srcPath := setupCmdTest(t)

	out, _, err := execute(t, "config", "--config", cfgPath, "--source", srcPath)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Mimi", got["dashboard"].(map[string]any)["child_name"])
	assert.Equal(t, srcPath, got["data"].(map[string]any)["source"])
}

func TestReportCmd(t *testing.T) {
	t.Run("Terminal report", func(t *testing.T) {
		cfgPath, srcPath := setupCmdTest(t)

		out, _, err := execute(t, "report", "--config", cfgPath, "--source", srcPath, "--no-color", "--topic", "数学")
		require.NoError(t, err)

		assert.Contains(t, out, "This month, Mimi said 12 words in total.")
		assert.Contains(t, out, "Word frequencies: 数学")
		assert.Contains(t, out, "synthetic demo data")
		assert.Contains(t, out, "counting")
		assert.Contains(t, out, "2024-03-03 09:00")
	})

	t.Run("JSON output", func(t *testing.T) {
		cfgPath, srcPath := setupCmdTest(t)

		out, _, err := execute(t, "report", "--config", cfgPath, "--source", srcPath, "--json")
		require.NoError(t, err)

		var d orchestrator.Dashboard
		require.NoError(t, json.Unmarshal([]byte(out), &d))
		assert.Equal(t, 12, d.Summary.TotalWords)
		assert.Equal(t, "Joy", d.Summary.DominantEmotion)
		assert.Equal(t, "识字", d.SelectedTopic)
	})

	t.Run("Persists a snapshot", func(t *testing.T) {
		cfgPath, srcPath := setupCmdTest(t)
		outDir := t.TempDir()

		_, errOut, err := execute(t, "report", "--config", cfgPath, "--source", srcPath, "--json", "--out", outDir)
		require.NoError(t, err)
		assert.Contains(t, errOut, "snapshot: "+outDir)

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0].Name(), "session_"))
		assert.FileExists(t, filepath.Join(outDir, entries[0].Name(), "dashboard.json"))
	})

	t.Run("Render without a visualization service", func(t *testing.T) {
		cfgPath, srcPath := setupCmdTest(t)

		_, _, err := execute(t, "report", "--config", cfgPath, "--source", srcPath, "--json", "--render")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render charts")
	})

	t.Run("Load failure", func(t *testing.T) {
		cfgPath, _ := setupCmdTest(t)

		_, _, err := execute(t, "report", "--config", cfgPath, "--source", filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}
