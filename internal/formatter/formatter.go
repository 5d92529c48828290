package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"kpi-sync-go/internal/aggregator"
)

// FormatText returns one "<group> <label>: <value>" line per metric, groups in
// report order, followed by the operator summary when present.
func FormatText(r aggregator.Report) string {
	var sb strings.Builder
	for _, gr := range r.Groups {
		for _, e := range gr.Entries() {
			sb.WriteString(fmt.Sprintf("%s %s: %s\n", gr.Group, e.Label, formatValue(e.Value, ", ")))
		}
		for _, a := range gr.Anomalies {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s %s: %s\n", a.Group, a.Metric, a.Message))
		}
	}
	if len(r.Operators) > 0 {
		sb.WriteString("Operators:\n")
		for _, o := range r.Operators {
			shift := o.Shift
			if shift == "" {
				shift = "-"
			}
			sb.WriteString(fmt.Sprintf("  • %s [%s]: closes=%d\n", o.Name, shift, o.Closes))
		}
	}
	return sb.String()
}

// FormatJSON returns the indented JSON representation of the report
func FormatJSON(r aggregator.Report) string {
	jsonBytes, _ := json.MarshalIndent(r, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns one Group,Metric,Value row per metric
func FormatCSV(r aggregator.Report) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"Group", "Metric", "Value"})
	for _, gr := range r.Groups {
		for _, e := range gr.Entries() {
			writer.Write([]string{string(gr.Group), e.Label, formatValue(e.Value, ";")})
		}
	}

	writer.Flush()
	return sb.String()
}

func formatValue(v any, sep string) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 4, 64)
	case []string:
		if sep == ";" {
			return strings.Join(x, sep)
		}
		return "[" + strings.Join(x, sep) + "]"
	default:
		return fmt.Sprint(x)
	}
}
