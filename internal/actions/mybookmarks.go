package actions

import (
	"fmt"
	"sort"
	"strings"

	"pushlog.dev/pushlog/internal/git"
	"pushlog.dev/pushlog/internal/runtime"
)

// Bookmark is a local branch and the commit it points at
type Bookmark struct {
	Name string
	Node string
}

// OwnedBookmarks returns, sorted by name, the branches named "<nick>/..."
// and those whose tip was authored by me
func OwnedBookmarks(graph git.Graph, branches map[string]string, nick, me string) ([]Bookmark, error) {
	prefix := ""
	if nick != "" {
		prefix = nick + "/"
	}

	var owned []Bookmark
	for name, node := range branches {
		if prefix == "" || !strings.HasPrefix(name, prefix) {
			commit, err := graph.Commit(node)
			if err != nil {
				return nil, err
			}
			if me == "" || commit.User() != me {
				continue
			}
		}
		owned = append(owned, Bookmark{Name: name, Node: node})
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Name < owned[j].Name })
	return owned, nil
}

// MyBookmarksAction lists the local branches that belong to the user
func MyBookmarksAction(run *runtime.Context) error {
	branches, err := run.Engine.LocalBranches()
	if err != nil {
		return err
	}
	owned, err := OwnedBookmarks(run.Engine.Graph(), branches, run.Engine.Config().Nick(), run.Engine.Identity())
	if err != nil {
		return err
	}

	w := run.Splog.Writer()
	for _, b := range owned {
		if _, err := fmt.Fprintf(w, "%-50s %s\n", b.Name, shortNode(b.Node)); err != nil {
			return err
		}
	}
	return nil
}
