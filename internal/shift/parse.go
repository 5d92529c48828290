// Package shift reads the monthly operator shift schedule export.
package shift

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"kpi-sync-go/internal/dataset"
	"kpi-sync-go/internal/logger"
)

// the export starts with two preamble lines and a banner line before the header
const headerLine = 4

// nameColumn is the position of the employee name in every row.
const nameColumn = 1

// Assignment is one operator's shift for the requested day.
type Assignment struct {
	Name  string `json:"name"`
	Shift string `json:"shift"`
}

// LoadFile parses the Shift_JIS schedule at path for day of month.
func LoadFile(path string, day int) ([]Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()
	return Parse(f, day)
}

// Parse reads a Shift_JIS encoded schedule and returns each employee's shift
// for day. Rows with an empty name are skipped.
func Parse(r io.Reader, day int) ([]Assignment, error) {
	reader := csv.NewReader(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		dayIdx = -1
		width  int
		out    []Assignment
	)
	line := 0
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if line < headerLine {
			continue
		}
		if line == headerLine {
			// the trailing column is always empty in the export
			if n := len(record); n > 0 && strings.TrimSpace(record[n-1]) == "" {
				record = record[:n-1]
			}
			width = len(record)
			if width <= nameColumn {
				return nil, &ParseError{Line: line, Err: ErrMissingName}
			}
			dayIdx = dayColumn(record, day)
			if dayIdx < 0 {
				return nil, &ParseError{Line: line, Err: fmt.Errorf("%w: %d", ErrMissingDay, day)}
			}
			continue
		}
		if len(record) <= dayIdx {
			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}
			return nil, &ParseError{Line: line, Err: ErrShortRecord}
		}
		name := strings.TrimSpace(record[nameColumn])
		if name == "" {
			continue
		}
		out = append(out, Assignment{Name: name, Shift: strings.TrimSpace(record[dayIdx])})
	}
	if dayIdx < 0 {
		return nil, ErrNoHeader
	}
	return out, nil
}

// dayColumn finds the header cell for day, written either "08" or "8".
func dayColumn(header []string, day int) int {
	padded := fmt.Sprintf("%02d", day)
	plain := strconv.Itoa(day)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == padded || h == plain {
			return i
		}
	}
	return -1
}

// Resolve rewrites schedule names to roster names. Unknown names are kept as-is.
func Resolve(assignments []Assignment, roster *dataset.Roster) []Assignment {
	log := logger.New().WithField("component", "shift")
	out := make([]Assignment, len(assignments))
	for i, a := range assignments {
		out[i] = a
		if name, ok := roster.FromSweet(a.Name); ok {
			out[i].Name = name
			continue
		}
		log.WithField("name", a.Name).Warn("schedule name not found in roster")
	}
	return out
}
