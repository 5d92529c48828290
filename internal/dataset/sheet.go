package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheets      = errors.New("no sheets")
	ErrNoRows        = errors.New("no header row")
	ErrMissingColumn = errors.New("missing column")
)

// Table is the first sheet of a workbook: a header index plus raw data rows.
type Table struct {
	header map[string]int
	rows   [][]string
}

// OpenTable reads the first sheet of the workbook at path. Cell values are raw,
// so date cells come back as serial numbers.
func OpenTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	header := map[string]int{}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if _, dup := header[h]; !dup && h != "" {
			header[h] = i
		}
	}
	return &Table{header: header, rows: rows[1:]}, nil
}

func (t *Table) Len() int { return len(t.rows) }

// Columns resolves every name to its index, failing on the first missing one.
func (t *Table) Columns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := t.header[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
		out[i] = idx
	}
	return out, nil
}

// Cell returns the trimmed value at row/col, or "" past the end of a short row.
func (t *Table) Cell(row, col int) string {
	r := t.rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

var timeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-01-02",
}

// SerialCell parses a date cell as an Excel serial. Text timestamps are
// interpreted in loc. ok is false for empty or unparseable cells.
func (t *Table) SerialCell(row, col int, loc *time.Location) (float64, bool) {
	v := t.Cell(row, col)
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true
	}
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
			return ToSerial(ts), true
		}
	}
	return 0, false
}
