package reporter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"kpi-sync-go/internal/types"
)

var (
	ErrTableNotFound  = errors.New("report table not found")
	ErrColumnNotFound = errors.New("report column not found")
)

// report columns, as labelled by the portal
const (
	colTotalCalls       = "着信数"
	colBeforeResponse   = "IVR応答前放棄呼数"
	colIVRInterruptions = "IVR切断数"
	colTimeOut          = "タイムアウト数"
	colAbandonedACD     = "ACD放棄呼数"

	totalRowLabel = "合計"
)

// Table is a rendered report list: header labels and body rows, one string per cell.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable extracts the list named list from a report page. The portal renders
// header and body as two tables, "<list>-table-head-table" and
// "<list>-table-body-table", with every cell value wrapped in an <xmp> element.
func ParseTable(r io.Reader, list string) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	head := findByID(doc, list+"-table-head-table")
	body := findByID(doc, list+"-table-body-table")
	if head == nil || body == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, list)
	}

	t := &Table{}
	if thead := findTag(head, "thead"); thead != nil {
		if tr := findTag(thead, "tr"); tr != nil {
			t.Header = cellTexts(tr)
		}
	}
	if len(t.Header) == 0 {
		return nil, fmt.Errorf("%w: %s has no header", ErrTableNotFound, list)
	}
	if tbody := findTag(body, "tbody"); tbody != nil {
		for c := tbody.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "tr" {
				t.Rows = append(t.Rows, cellTexts(c))
			}
		}
	}
	return t, nil
}

// Counters maps the report onto template counters. A total row is used when the
// report has one; otherwise every body row is summed.
func (t *Table) Counters() (types.TemplateCounters, error) {
	names := []string{colTotalCalls, colBeforeResponse, colIVRInterruptions, colTimeOut, colAbandonedACD}
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = -1
		for j, h := range t.Header {
			if strings.TrimSpace(h) == n {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return types.TemplateCounters{}, fmt.Errorf("%w: %s", ErrColumnNotFound, n)
		}
	}

	rows := t.Rows
	for _, r := range t.Rows {
		if len(r) > 0 && strings.TrimSpace(r[0]) == totalRowLabel {
			rows = [][]string{r}
			break
		}
	}

	sums := make([]int, len(names))
	for _, r := range rows {
		for i, col := range idx {
			if col >= len(r) {
				continue
			}
			n, err := parseCount(r[col])
			if err != nil {
				return types.TemplateCounters{}, fmt.Errorf("column %s: %w", names[i], err)
			}
			sums[i] += n
		}
	}
	return types.TemplateCounters{
		TotalCalls:                     sums[0],
		IVRInterruptionsBeforeResponse: sums[1],
		IVRInterruptions:               sums[2],
		TimeOut:                        sums[3],
		AbandonedDuringOperator:        sums[4],
	}, nil
}

func parseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findTag(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// cellTexts collects the text of every <xmp> under n, in document order.
func cellTexts(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "xmp" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			out = append(out, strings.TrimSpace(sb.String()))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
