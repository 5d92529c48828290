package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var jst = time.FixedZone("JST", 9*60*60)

// testNow is 2026-10-18 15:00 JST.
var testNow = time.Date(2026, time.October, 18, 15, 0, 0, 0, jst)

func at(hour, minute int) float64 {
	return ToSerial(time.Date(2026, time.October, 18, hour, minute, 0, 0, jst))
}

func yesterday(hour, minute int) float64 {
	return ToSerial(time.Date(2026, time.October, 17, hour, minute, 0, 0, jst))
}

func writeWorkbook(t *testing.T, name string, header []string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &h))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}
