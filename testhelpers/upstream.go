package testhelpers

import (
	"fmt"
	"path/filepath"
	"testing"
)

// UpstreamMessages are the descriptions of the changesets NewUpstream creates
var UpstreamMessages = []string{
	"Bug 1000001 - Add feature r=alice",
	"No bug - Update docs",
}

// Upstream is a "central" tree served from a local repository, with its
// pushlog served over HTTP. Each changeset is its own push.
type Upstream struct {
	Repo   *GitRepo
	Server *PushlogServer
	Nodes  []string
}

// NewUpstream creates the upstream tree and registers it in scene's tree registry
func NewUpstream(t *testing.T, scene *Scene) *Upstream {
	t.Helper()
	repo, err := NewGitRepo(filepath.Join(t.TempDir(), "upstream"))
	if err != nil {
		t.Fatalf("Failed to create upstream repo: %v", err)
	}

	u := &Upstream{Repo: repo, Server: NewPushlogServer(t)}
	for i, message := range UpstreamMessages {
		if err := repo.CreateChangeAndCommit(message, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("Failed to commit upstream: %v", err)
		}
		node, err := repo.GetCurrentSHA()
		if err != nil {
			t.Fatalf("Failed to read upstream head: %v", err)
		}
		u.Nodes = append(u.Nodes, node)
		u.Server.AddPush(int64(i+1), "dev@example.com", 1458561600+int64(i)*86400, node)
	}

	err = scene.WriteTreeRegistry(fmt.Sprintf(`trees:
  - name: central
    uri: %s
    pushlog: %s
    aliases: [mc]
`, repo.Dir, u.Server.URL))
	if err != nil {
		t.Fatalf("Failed to write tree registry: %v", err)
	}
	return u
}
