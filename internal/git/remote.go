package git

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RemoteBranches lists the branch heads advertised by the repository at uri.
// Each branch maps to the heads it points at, in advertisement order.
func RemoteBranches(ctx context.Context, uri string) (map[string][]string, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{uri},
	})

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote %s: %w", uri, err)
	}

	branches := make(map[string][]string)
	for _, ref := range refs {
		if !ref.Name().IsBranch() || ref.Type() != plumbing.HashReference {
			continue
		}
		name := ref.Name().Short()
		branches[name] = append(branches[name], ref.Hash().String())
	}
	return branches, nil
}

// Fetch pulls every branch of uri into refs/remotes/<namespace>/
func (r *CommandRunner) Fetch(ctx context.Context, uri, namespace string) error {
	refspec := fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", namespace)
	_, err := r.Run(ctx, "fetch", "--no-tags", uri, refspec)
	return err
}

// Transport returns the protocol used to talk to uri ("http", "https", "ssh", "file", ...)
func Transport(uri string) string {
	endpoint, err := transport.NewEndpoint(uri)
	if err != nil {
		return ""
	}
	return strings.ToLower(endpoint.Protocol)
}

// SupportsHTTP reports whether uri is reached over http or https
func SupportsHTTP(uri string) bool {
	switch Transport(uri) {
	case "http", "https":
		return true
	default:
		return false
	}
}
