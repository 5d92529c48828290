package processor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"kpi-sync-go/internal/collector"
	"kpi-sync-go/internal/config"
	"kpi-sync-go/internal/dataset"
	"kpi-sync-go/internal/types"
)

var cycleNow = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataDir:              dir,
		CloseFile:            filepath.Join(dir, "close.xlsx"),
		OperatorsFile:        filepath.Join(dir, "operators.xlsx"),
		ShiftSchedulePattern: "%s_schedule.csv",
		SyncMaxRetries:       0,
		Location:             time.UTC,
	}
}

func completeData(timeOut int) types.RawData {
	d := types.NewRawData()
	for _, g := range types.Groups {
		k, _ := types.KeysFor(g)
		d.Templates[k.Template] = types.TemplateCounters{TotalCalls: 100, IVRInterruptions: 8, AbandonedDuringOperator: 8, TimeOut: timeOut}
		d.Counts[k.Voicemail] = 10
		d.Counts[k.Direct] = 5
		for _, b := range types.Buckets {
			d.Counts[k.Callback[b]] = 2
		}
		for _, th := range types.Thresholds {
			d.Pending[k.Waiting[th]] = []string{}
		}
	}
	d.Pending["wfc_over60_ss"] = []string{"2002"}
	d.Pending["wfc_over40_ss"] = []string{"2002"}
	d.Pending["wfc_over30_ss"] = []string{"2002"}
	d.Pending["wfc_over20_ss"] = []string{"2002"}
	return d
}

func staticTasks(d types.RawData) func(*config.Config, time.Time) []collector.Task {
	return func(*config.Config, time.Time) []collector.Task {
		return []collector.Task{{Name: "static", Run: func(context.Context) (types.RawData, error) { return d, nil }}}
	}
}

func TestRunCycle(t *testing.T) {
	p := New(testConfig(t), WithTasks(staticTasks(completeData(18))), WithClock(func() time.Time { return cycleNow }))

	res, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.Equal(t, cycleNow, res.Report.GeneratedAt)
	require.Len(t, res.Report.Groups, 4)

	ss, ok := res.Report.Group(types.GroupSS)
	require.True(t, ok)
	assert.Equal(t, 8, ss.AbandonedInIVR)
	assert.Equal(t, 76, ss.Responses)
	assert.Equal(t, []string{"2002"}, ss.WaitingList60)
	assert.Empty(t, res.Report.Anomalies())
	assert.Nil(t, res.Report.Operators)

	require.NotEmpty(t, res.Actions)
	assert.Equal(t, "SS", res.Actions[0].Group)
}

func TestRunCycleClampsWhenConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.ClampNegativeIVR = true
	p := New(cfg, WithTasks(staticTasks(completeData(4))), WithClock(func() time.Time { return cycleNow }))

	res, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	ss, _ := res.Report.Group(types.GroupSS)
	assert.Equal(t, 0, ss.AbandonedInIVR)
	assert.Len(t, res.Report.Anomalies(), 4)
}

func TestRunCycleKeepsNegativeByDefault(t *testing.T) {
	p := New(testConfig(t), WithTasks(staticTasks(completeData(4))), WithClock(func() time.Time { return cycleNow }))

	res, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	ss, _ := res.Report.Group(types.GroupSS)
	assert.Equal(t, -6, ss.AbandonedInIVR)
}

func TestRunCycleCollectionFailure(t *testing.T) {
	boom := errors.New("workbook locked")
	failing := func(*config.Config, time.Time) []collector.Task {
		return []collector.Task{{Name: "activity", Run: func(context.Context) (types.RawData, error) { return types.RawData{}, boom }}}
	}
	p := New(testConfig(t), WithTasks(failing), WithClock(func() time.Time { return cycleNow }))

	res, err := p.RunCycle(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, res.Error, "activity")
	assert.Empty(t, res.Report.Groups)
}

func TestRunCycleOperators(t *testing.T) {
	cfg := testConfig(t)
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"所有者", "完了日時"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"佐藤", dataset.ToSerial(cycleNow.Add(-time.Hour))}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"佐藤", dataset.ToSerial(cycleNow.Add(-2 * time.Hour))}))
	require.NoError(t, f.SaveAs(cfg.CloseFile))

	p := New(cfg, WithTasks(staticTasks(completeData(18))), WithClock(func() time.Time { return cycleNow }))
	res, err := p.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Report.Operators, 1)
	assert.Equal(t, "佐藤", res.Report.Operators[0].Name)
	assert.Equal(t, 2, res.Report.Operators[0].Closes)
}
