package table

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteText renders the snapshot as a plain terminal table.
func WriteText(w io.Writer, s Snapshot) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	if len(s.Header) > 0 {
		tw.SetHeader(s.Header)
	}
	tw.AppendBulk(s.Rows)
	tw.Render()
}
