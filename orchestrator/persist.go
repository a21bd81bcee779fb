package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/echoogrow/dashboard/metrics"
	"github.com/echoogrow/dashboard/narrator"
	"github.com/echoogrow/dashboard/topics"
)

type PersistBundle struct {
	SessionID       string                 `json:"session_id"`
	DashboardID     string                 `json:"dashboard_id"`
	Source          string                 `json:"source"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Classifier      string                 `json:"classifier"`
	Summary         metrics.Summary        `json:"summary"`
	Narrative       string                 `json:"narrative"`
	NarrativeParts  []narrator.Part        `json:"narrative_parts"`
	ExemplarEmotion string                 `json:"exemplar_emotion"`
	SelectedTopic   string                 `json:"selected_topic"`
	WordFrequencies []topics.WordFrequency `json:"word_frequencies"`
}

// Snapshot locates one persisted dashboard.
type Snapshot struct {
	SessionID  string
	Dir        string
	RowsPath   string
	BundlePath string
}

func mkSessionDir(outputsRoot string, at time.Time, id string) (string, string, error) {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	sid := "session_" + at.Format("20060102-150405") + "_" + short
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

// writeJSON writes v to a temp file in the target directory and renames it
// into place, so readers never observe a partial file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Persist writes d under outputsRoot as rows.json plus dashboard.json.
func Persist(outputsRoot string, d *Dashboard) (*Snapshot, error) {
	sid, outDir, err := mkSessionDir(outputsRoot, d.GeneratedAt, d.ID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		SessionID:  sid,
		Dir:        outDir,
		RowsPath:   filepath.Join(outDir, "rows.json"),
		BundlePath: filepath.Join(outDir, "dashboard.json"),
	}
	if err := writeJSON(snap.RowsPath, d.Rows); err != nil {
		return nil, err
	}

	bundle := PersistBundle{
		SessionID:       sid,
		DashboardID:     d.ID,
		Source:          d.Source,
		GeneratedAt:     d.GeneratedAt,
		Classifier:      d.Classifier,
		Summary:         d.Summary, // rows stay in rows.json only
		Narrative:       d.Narrative.String(),
		NarrativeParts:  d.Narrative.Parts,
		ExemplarEmotion: d.ExemplarEmotion,
		SelectedTopic:   d.SelectedTopic,
		WordFrequencies: d.WordFrequencies,
	}
	if err := writeJSON(snap.BundlePath, bundle); err != nil {
		return nil, err
	}
	return snap, nil
}
