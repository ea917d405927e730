package table

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const Style = `.table-container { width: 100%; height: 100%; overflow: auto; }
table { width: 100%; border-collapse: collapse; font-family: Arial, sans-serif; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f4f4f4; font-weight: bold; }
tr:nth-child(even) { background-color: #f9f9f9; }`

// HTML renders the snapshot as a table fragment. Every header and cell is
// escaped; upstream text is never written as markup.
func HTML(s Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		write := func(parts ...string) {
			for _, p := range parts {
				if err != nil {
					return
				}
				_, err = io.WriteString(w, p)
			}
		}

		write(`<div class="table-container"><table id="dataTable"><thead id="tableHeader">`)
		if len(s.Header) > 0 {
			write("<tr>")
			for _, h := range s.Header {
				write("<th>", templ.EscapeString(h), "</th>")
			}
			write("</tr>")
		}
		write(`</thead><tbody id="tableBody">`)
		for _, r := range s.Rows {
			write("<tr>")
			for _, cell := range r {
				write("<td>", templ.EscapeString(cell), "</td>")
			}
			write("</tr>")
		}
		write("</tbody></table></div>")
		return err
	})
}
