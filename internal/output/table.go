package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// newTable starts a borderless table of left-aligned columns two spaces apart
func newTable(header ...string) table.Writer {
	t := table.NewWriter()
	style := t.Style()
	style.Options = table.OptionsNoBordersAndSeparators
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "
	style.Format.Header = text.FormatDefault

	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = headerStyle.Render(h)
	}
	t.AppendHeader(row)
	return t
}

// renderTable writes t without the padding that trails each line
func renderTable(w io.Writer, t table.Writer) error {
	for _, line := range strings.Split(t.Render(), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
