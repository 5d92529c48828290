package actionable

import (
	"fmt"
	"strings"

	"kpi-sync-go/internal/aggregator"
)

type ActionCard struct {
	Group   string `json:"group,omitempty"`
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// lowCallbackRate flags groups whose cumulative 20 min callback rate (direct
// handling plus callbacks closed within 20 min, over every closed or pending
// case) is below one half.
const lowCallbackRate = 0.5

// Generate turns a report into follow-up cards, most urgent first. A report with
// nothing to act on yields a single monitoring card.
func Generate(r aggregator.Report) []ActionCard {
	var cards []ActionCard
	for _, gr := range r.Groups {
		if gr.WaitingCount60 > 0 {
			cards = append(cards, ActionCard{
				Group:   string(gr.Group),
				Insight: fmt.Sprintf("%d cases waiting over 60 min (%s)", gr.WaitingCount60, strings.Join(gr.WaitingList60, ", ")),
				Action:  "Call back the listed cases before new voicemails",
				Impact:  "Stop the oldest callbacks from slipping further",
			})
		}
	}
	for _, a := range r.Anomalies() {
		cards = append(cards, ActionCard{
			Group:   string(a.Group),
			Insight: fmt.Sprintf("%s: %s", a.Metric, a.Message),
			Action:  "Check the portal template and the support export for this group",
			Impact:  "Abandoned and response figures for the group are unreliable",
		})
	}
	for _, gr := range r.Groups {
		if gr.Voicemails > 0 && gr.CallbackRateUnder20 < lowCallbackRate {
			cards = append(cards, ActionCard{
				Group:   string(gr.Group),
				Insight: fmt.Sprintf("Callback rate within 20 min is %.0f%%", gr.CallbackRateUnder20*100),
				Action:  "Move an operator onto callbacks during peak hours",
				Impact:  "Raise the 20 min callback rate",
			})
		}
	}
	if len(cards) == 0 {
		return []ActionCard{{
			Insight: "No overdue callbacks or data issues detected",
			Action:  "Monitor",
			Impact:  "Low immediate intervention",
		}}
	}
	return cards
}
