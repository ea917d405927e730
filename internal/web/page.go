package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/spacesedan/sentitable/internal/table"
)

// widgetPage wraps the table fragment in a standalone document.
func widgetPage(title string, snap table.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" +
			templ.EscapeString(title) + "</title><style>" + table.Style + "</style></head><body>"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := table.HTML(snap).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
