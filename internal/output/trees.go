package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"pushlog.dev/pushlog/internal/config"
)

// RenderTrees lists every known tree with its aliases
func RenderTrees(w io.Writer, trees *config.Trees) error {
	names := trees.Names()
	longest := len("Repo")
	for _, name := range names {
		if len(name) > longest {
			longest = len(name)
		}
	}

	if _, err := fmt.Fprintf(w, "%*s  %s\n", longest, "Repo", "Aliases"); err != nil {
		return err
	}
	for _, name := range names {
		line := fmt.Sprintf("%*s: %s", longest, name, strings.Join(trees.Aliases(name), ", "))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// RenderRefs lists stored refs as "name node", sorted by name
func RenderRefs(w io.Writer, refs map[string]string) error {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("Ref", "Changeset")
	for _, name := range names {
		t.AppendRow(table.Row{name, refs[name]})
	}
	return renderTable(w, t)
}
