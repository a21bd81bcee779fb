package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/echoogrow/dashboard/orchestrator"
)

var (
	reportTopic   string
	reportJSON    bool
	reportOut     string
	reportRender  bool
	reportNoColor bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the dashboard to the terminal",
	Long: `Render one dashboard from the configured source and print the summary,
emotion and topic tables and the per-utterance growth table.

Examples:
  echoogrow report                           # Terminal report
  echoogrow report --topic 数学               # Word frequencies for 数学
  echoogrow report --json                    # Dashboard as JSON
  echoogrow report --out outputs --render    # Persist a snapshot and render charts`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportTopic, "topic", "t", "", "topic for word frequencies (default: first catalog topic)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output as JSON")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "persist a snapshot under this directory")
	reportCmd.Flags().BoolVar(&reportRender, "render", false, "push charts to the visualization service")
	reportCmd.Flags().BoolVar(&reportNoColor, "no-color", false, "disable colored output")
}

func runReport(cmd *cobra.Command, args []string) error {
	p, err := orchestrator.NewPipeline(conf, orchestrator.WithLogger(logger))
	if err != nil {
		return err
	}
	d, err := p.Run(cmd.Context(), conf.Data.Source, reportTopic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return err
		}
	} else {
		printReport(out, d, !reportNoColor)
	}

	dir := reportOut
	if reportOut != "" {
		snap, err := orchestrator.Persist(reportOut, d)
		if err != nil {
			return err
		}
		dir = snap.Dir
		fmt.Fprintf(cmd.ErrOrStderr(), "snapshot: %s\n", snap.Dir)
	}
	if reportRender {
		if dir == "" {
			dir = filepath.Join(conf.Paths.Outputs, "charts")
		}
		res, err := p.Render(cmd.Context(), d, dir)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		for _, path := range append(res.Trends, res.WordCloud) {
			fmt.Fprintf(cmd.ErrOrStderr(), "chart: %s\n", path)
		}
	}
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	t := newTable(w)
	t.Header(header)
	_ = t.Bulk(rows)
	_ = t.Render()
}

// printReport writes the terminal rendition of d. Highlighted narrative
// values are colored when useColors is set.
func printReport(w io.Writer, d *orchestrator.Dashboard, useColors bool) {
	title := color.New(color.FgWhite, color.Bold)
	hl := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	if !useColors {
		title.DisableColor()
		hl.DisableColor()
		warn.DisableColor()
	}

	title.Fprintf(w, "%s · %s\n", d.Title, d.ChildName)
	fmt.Fprintf(w, "%s (%d rows)\n\n", d.Source, d.Summary.Rows)

	for _, part := range d.Narrative.Parts {
		if part.Highlight {
			hl.Fprint(w, part.Text)
			continue
		}
		fmt.Fprint(w, part.Text)
	}
	fmt.Fprint(w, "\n\n")

	renderTable(w, []string{"Metric", "Value"}, [][]string{
		{"total words", strconv.Itoa(d.Summary.TotalWords)},
		{"avg sentence length", strconv.FormatFloat(d.Summary.AvgSentenceLength, 'f', -1, 64)},
		{"dominant emotion", d.Summary.DominantEmotion},
	})
	fmt.Fprintln(w)

	var emotions [][]string
	for _, e := range d.Summary.EmotionCounts {
		emotions = append(emotions, []string{e.Emotion, strconv.Itoa(e.Count)})
	}
	renderTable(w, []string{"Emotion", "Count"}, emotions)
	fmt.Fprintln(w)

	if d.Synthetic() {
		warn.Fprintln(w, "topic data below is synthetic demo data")
	}
	var props [][]string
	for _, p := range d.Summary.TopicProportions {
		props = append(props, []string{p.Topic, strconv.Itoa(p.Value)})
	}
	renderTable(w, []string{"Topic", "Proportion"}, props)
	fmt.Fprintln(w)

	var words [][]string
	for _, f := range d.WordFrequencies {
		words = append(words, []string{f.Word, strconv.Itoa(f.Count)})
	}
	title.Fprintf(w, "Word frequencies: %s\n", d.SelectedTopic)
	renderTable(w, []string{"Word", "Count"}, words)
	fmt.Fprintln(w)

	header := []string{"Time", "Emotion", "Words", "Unique", "Cumulative", "Cumulative unique"}
	if d.HasSentiment {
		header = append(header, "Sentiment")
	}
	var rows [][]string
	for _, r := range d.Rows {
		row := []string{
			r.Time.Format("2006-01-02 15:04"),
			r.Emotion,
			strconv.Itoa(r.WordCount),
			strconv.Itoa(r.UniqueWordCount),
			strconv.Itoa(r.CumulativeWordCount),
			strconv.Itoa(r.CumulativeUniqueWordCount),
		}
		if d.HasSentiment {
			row = append(row, strconv.FormatFloat(r.SentimentScore, 'f', 2, 64))
		}
		rows = append(rows, row)
	}
	renderTable(w, header, rows)
}
