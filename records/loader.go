package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Order selects how the loader treats the timestamp ordering of the source.
type Order string

const (
	// OrderTrust keeps source order without checking it.
	OrderTrust Order = "trust"
	// OrderValidate keeps source order and fails on the first row that goes back in time.
	OrderValidate Order = "validate"
	// OrderSort stable-sorts records by timestamp.
	OrderSort Order = "sort"
)

func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderTrust, OrderValidate, OrderSort:
		return o, nil
	case "":
		return OrderValidate, nil
	default:
		return "", fmt.Errorf("invalid order %q: must be trust, validate or sort", s)
	}
}

// DefaultTimeLayouts are tried in order for every timestamp cell.
var DefaultTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

type Options struct {
	RequireSentiment bool
	TimeLayouts      []string
	Order            Order
	// Location applies to timestamps without an explicit zone. Nil means UTC.
	Location *time.Location
}

func DefaultOptions() Options {
	return Options{
		RequireSentiment: true,
		TimeLayouts:      DefaultTimeLayouts,
		Order:            OrderValidate,
	}
}

// Load reads a .csv or .xlsx source into a Dataset. Any malformed row rejects the whole load.
func Load(path string, opts Options) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	default:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, &LoadError{Source: path, Reason: "open", Err: err}
		}
		defer f.Close()
		rows, err = readCSV(path, f)
	}
	if err != nil {
		return nil, err
	}
	return build(path, rows, opts)
}

// Read parses CSV content from r. source is only used in error messages and the Dataset.
func Read(r io.Reader, source string, opts Options) (*Dataset, error) {
	rows, err := readCSV(source, r)
	if err != nil {
		return nil, err
	}
	return build(source, rows, opts)
}

func readCSV(source string, r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "malformed csv", Err: err}
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Reason: "open", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Source: path, Reason: "no sheets"}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &LoadError{Source: path, Reason: "read sheet " + sheets[0], Err: err}
	}
	out := rows[:0]
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return out, nil
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	col := headerIndex(out[0], ColTime)
	if col < 0 {
		return out, nil
	}
	for _, r := range out[1:] {
		if col >= len(r) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(r[col]), 64)
		if err != nil {
			continue
		}
		ts, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			continue
		}
		// Serial dates carry float noise; keep the wall clock, drop the zone.
		r[col] = ts.Round(time.Millisecond).Format(excelWallClock)
	}
	return out, nil
}

// excelWallClock renders a converted date cell so that a default layout
// parses it back in the configured location.
const excelWallClock = "2006-01-02T15:04:05.999"

func headerIndex(header []string, name string) int {
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func build(source string, rows [][]string, opts Options) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, &LoadError{Source: source, Reason: "missing header row"}
	}
	if len(opts.TimeLayouts) == 0 {
		opts.TimeLayouts = DefaultTimeLayouts
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	required := []string{ColTime, ColSentence, ColEmotion}
	if opts.RequireSentiment {
		required = append(required, ColSentiment)
	}
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Source: source, Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}
	_, hasSentiment := idx[ColSentiment]

	ds := &Dataset{
		Source:       source,
		Records:      make([]UtteranceRecord, 0, len(rows)-1),
		HasSentiment: hasSentiment,
	}
	for i, row := range rows[1:] {
		n := i + 1
		cell := func(col string) string {
			if j := idx[col]; j < len(row) {
				return row[j]
			}
			return ""
		}

		raw := strings.TrimSpace(cell(ColTime))
		ts, err := parseTime(raw, opts.TimeLayouts, loc)
		if err != nil {
			return nil, &ParseError{Source: source, Row: n, Column: ColTime, Value: raw, Err: err}
		}
		rec := UtteranceRecord{
			Time:     ts,
			Sentence: cell(ColSentence),
			Emotion:  strings.TrimSpace(cell(ColEmotion)),
		}
		if hasSentiment {
			raw := strings.TrimSpace(cell(ColSentiment))
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &ParseError{Source: source, Row: n, Column: ColSentiment, Value: raw, Err: err}
			}
			rec.SentimentScore = v
		}
		ds.Records = append(ds.Records, rec)
	}

	switch opts.Order {
	case OrderSort:
		sort.SliceStable(ds.Records, func(i, j int) bool {
			return ds.Records[i].Time.Before(ds.Records[j].Time)
		})
	case OrderTrust:
	default:
		for i := 1; i < len(ds.Records); i++ {
			if ds.Records[i].Time.Before(ds.Records[i-1].Time) {
				return nil, &LoadError{
					Source: source,
					Reason: fmt.Sprintf("row %d is earlier than row %d", i+1, i),
				}
			}
		}
	}
	return ds, nil
}

var errNoLayout = errors.New("no known timestamp layout matches")

func parseTime(s string, layouts []string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoLayout
}
