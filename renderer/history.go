package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/rpi"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders year over year index points, in the given order.
func HistoryMarkdown(points []rpi.Point, g rpi.Granularity) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Year over year index (%s)", g))
	if len(points) == 0 {
		doc.PlainText("No month could be computed.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Month", "Index", "Items", "Excluded"},
		Rows:   [][]string{},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{
			p.Date.Format("2006-01"),
			p.Index.SignedString(),
			fmt.Sprint(len(p.Result.Contributions)),
			fmt.Sprint(len(p.Result.Exclusions)),
		})
	}
	doc.Table(table)

	return doc.String()
}
