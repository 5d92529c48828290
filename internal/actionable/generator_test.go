package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-sync-go/internal/aggregator"
	"kpi-sync-go/internal/kpi"
	"kpi-sync-go/internal/types"
)

func TestGenerateQuietReport(t *testing.T) {
	r := aggregator.Report{Groups: []aggregator.GroupReport{
		{GroupMetrics: kpi.GroupMetrics{Group: types.GroupSS, Voicemails: 4, CallbackRateUnder20: 0.9}},
	}}
	cards := Generate(r)
	require.Len(t, cards, 1)
	assert.Equal(t, "Monitor", cards[0].Action)
	assert.Empty(t, cards[0].Group)
}

func TestGenerateOrdersByUrgency(t *testing.T) {
	r := aggregator.Report{Groups: []aggregator.GroupReport{
		{
			GroupMetrics: kpi.GroupMetrics{Group: types.GroupSS, Voicemails: 10, CallbackRateUnder20: 0.2},
		},
		{
			GroupMetrics: kpi.GroupMetrics{
				Group:               types.GroupTVS,
				Voicemails:          3,
				CallbackRateUnder20: 0.8,
				WaitingCount60:      2,
				WaitingList60:       []string{"2002", "2005"},
			},
			Anomalies: []kpi.Anomaly{{Group: types.GroupTVS, Metric: "abandoned_in_ivr", Message: "time_out 1 is below voicemails 3"}},
		},
	}}

	cards := Generate(r)
	require.Len(t, cards, 3)
	assert.Equal(t, "TVS", cards[0].Group)
	assert.Contains(t, cards[0].Insight, "2002, 2005")
	assert.Equal(t, "TVS", cards[1].Group)
	assert.Contains(t, cards[1].Insight, "abandoned_in_ivr")
	assert.Equal(t, "SS", cards[2].Group)
	assert.Equal(t, "Callback rate within 20 min is 20%", cards[2].Insight)
}

func TestGenerateIgnoresGroupsWithoutVoicemail(t *testing.T) {
	r := aggregator.Report{Groups: []aggregator.GroupReport{
		{GroupMetrics: kpi.GroupMetrics{Group: types.GroupHHD}},
	}}
	cards := Generate(r)
	require.Len(t, cards, 1)
	assert.Equal(t, "Monitor", cards[0].Action)
}
