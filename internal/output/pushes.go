package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// DateLayout is how push dates are printed
const DateLayout = "2006-01-02T15:04:05"

// Changeset identifies the revision a push table describes
type Changeset struct {
	Node        string
	Description string
}

// Summary returns the short node and the first line of the description
func (c Changeset) Summary() string {
	node := c.Node
	if len(node) > 12 {
		node = node[:12]
	}
	summary, _, _ := strings.Cut(c.Description, "\n")
	return strings.TrimSpace(node + " " + summary)
}

// PushRow is one line of a push table
type PushRow struct {
	// Release is the earliest release containing the changeset, for release trees
	Release string
	Tree    string
	When    time.Time
	User    string
	// URL links to the build results of the push, when known
	URL string
}

// RenderPushes writes the pushes of a changeset as a table
func RenderPushes(w io.Writer, cs Changeset, rows []PushRow, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	if _, err := fmt.Fprintln(w, cs.Summary()); err != nil {
		return err
	}

	t := newTable("Release", "Tree", "Date", "Username", "Build Info")
	for _, row := range rows {
		t.AppendRow(table.Row{row.Release, row.Tree, row.When.In(loc).Format(DateLayout), row.User, row.URL})
	}
	return renderTable(w, t)
}
