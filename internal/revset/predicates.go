package revset

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"pushlog.dev/pushlog/internal/commitparser"
	"pushlog.dev/pushlog/internal/config"
	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

func builtins() []Spec {
	return []Spec{
		{
			Name:  "bug",
			Args:  []ArgKind{IntArg},
			Usage: "bug(N)",
			Doc:   "Changesets referencing the given bug number.",
			Fn:    bugPredicate,
		},
		{
			Name:  "dontbuild",
			Usage: "dontbuild()",
			Doc:   "Changesets whose description asks automation to skip builds.",
			Fn:    descriptionFilter(commitparser.HasDontBuild),
		},
		{
			Name:  "me",
			Usage: "me()",
			Doc:   "Changesets you authored or reviewed.",
			Fn:    mePredicate,
		},
		{
			Name:  "nobug",
			Usage: "nobug()",
			Doc:   "Changesets that reference no bug.",
			Fn: descriptionFilter(func(desc string) bool {
				return len(commitparser.ParseBugs(desc)) == 0
			}),
		},
		{
			Name:  "reviewer",
			Args:  []ArgKind{StringArg},
			Usage: "reviewer(NAME)",
			Doc:   "Changesets reviewed by NAME.",
			Fn:    reviewerPredicate,
		},
		{
			Name:  "reviewed",
			Usage: "reviewed()",
			Doc:   "Changesets with at least one reviewer.",
			Fn: descriptionFilter(func(desc string) bool {
				return len(commitparser.ParseReviewers(desc)) > 0
			}),
		},
		{
			Name:  "tree",
			Args:  []ArgKind{StringArg},
			Usage: "tree(TREE)",
			Doc:   "Changesets currently in TREE, the ancestors of its head.",
			Fn:    treePredicate,
			Index: true,
		},
		{
			Name:  "firstpushdate",
			Args:  []ArgKind{DateArg},
			Usage: "firstpushdate(DATE)",
			Doc:   "Changesets whose first push matches DATE.",
			Fn:    firstPushDatePredicate,
			Index: true,
		},
		{
			Name:  "pushdate",
			Args:  []ArgKind{DateArg},
			Usage: "pushdate(DATE)",
			Doc:   "Changesets with any push matching DATE.",
			Fn:    pushDatePredicate,
			Index: true,
		},
		{
			Name:  "firstpushtree",
			Args:  []ArgKind{StringArg},
			Usage: "firstpushtree(TREE)",
			Doc:   "Changesets first pushed to TREE.",
			Fn:    firstPushTreePredicate,
			Index: true,
		},
		{
			Name:     "pushhead",
			Args:     []ArgKind{StringArg},
			Optional: 1,
			Usage:    "pushhead([TREE])",
			Doc: "Changesets that were the head of a push. With TREE only pushes to TREE count " +
				"and the result is in ascending push order.",
			Fn:    pushHeadPredicate,
			Index: true,
		},
	}
}

func descriptionFilter(match func(desc string) bool) Predicate {
	return func(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
		return subset.Filter(func(node string) (bool, error) {
			desc, err := env.description(node)
			if err != nil {
				return false, err
			}
			return match(desc), nil
		})
	}
}

func bugPredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	bug, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, pushlogerrors.NewValidationError("bug", "requires an integer argument")
	}
	return descriptionFilter(func(desc string) bool {
		return strings.Contains(desc, args[0]) && commitparser.HasBug(desc, bug)
	})(ctx, env, subset, args)
}

func reviewerPredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	return descriptionFilter(func(desc string) bool {
		return commitparser.HasReviewer(desc, args[0])
	})(ctx, env, subset, args)
}

func mePredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	if env.User == "" {
		return nil, fmt.Errorf("a username must be configured to use me()")
	}
	fold := cases.Fold()
	me := fold.String(env.User)

	return subset.Filter(func(node string) (bool, error) {
		commit, err := env.Graph.Commit(node)
		if err != nil {
			return false, err
		}
		if strings.Contains(fold.String(commit.User()), me) {
			return true, nil
		}
		return env.Nick != "" && commitparser.HasReviewer(commit.Description, env.Nick), nil
	})
}

func treePredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	tree, err := env.tree(args[0])
	if err != nil {
		return nil, err
	}
	if env.Store == nil {
		return RevSet{}, nil
	}

	ref := tree.Name + "/" + tree.HeadBranch()
	head, ok, err := env.Store.RemoteRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no head recorded for %s; pull %s first", ref, tree.Name)
	}
	node, err := env.Graph.Resolve(head)
	if err != nil {
		return nil, fmt.Errorf("head of %s: %w", ref, err)
	}
	ancestors, err := env.Graph.Ancestors([]string{node}, true)
	if err != nil {
		return nil, err
	}
	return subset.Filter(func(node string) (bool, error) {
		_, ok := ancestors[node]
		return ok, nil
	})
}

func pushDateMatcher(env *Env, name, spec string) (DateMatcher, error) {
	match, err := ParseDateSpec(spec, env.now(), env.Location)
	if err != nil {
		return nil, pushlogerrors.NewValidationError(name, err.Error())
	}
	return match, nil
}

func firstPushDatePredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	match, err := pushDateMatcher(env, "firstpushdate", args[0])
	if err != nil {
		return nil, err
	}
	return subset.Filter(func(node string) (bool, error) {
		first, ok, err := env.firstPush(ctx, node)
		if err != nil || !ok {
			return false, err
		}
		return match(first.When), nil
	})
}

func pushDatePredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	match, err := pushDateMatcher(env, "pushdate", args[0])
	if err != nil {
		return nil, err
	}
	return subset.Filter(func(node string) (bool, error) {
		pushes, err := env.pushes(ctx, node)
		if err != nil {
			return false, err
		}
		for _, p := range pushes {
			if match(p.When) {
				return true, nil
			}
		}
		return false, nil
	})
}

func firstPushTreePredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	tree, err := env.tree(args[0])
	if err != nil {
		return nil, err
	}
	return subset.Filter(func(node string) (bool, error) {
		first, ok, err := env.firstPush(ctx, node)
		if err != nil || !ok {
			return false, err
		}
		return first.Tree == tree.Name, nil
	})
}

func pushHeadPredicate(ctx context.Context, env *Env, subset RevSet, args []string) (RevSet, error) {
	if len(args) == 0 {
		return subset.Filter(func(node string) (bool, error) {
			return env.isPushHead(ctx, node)
		})
	}

	tree, err := env.tree(args[0])
	if err != nil {
		return nil, err
	}
	if env.Store == nil {
		return RevSet{}, nil
	}

	members := subset.Set()
	seen := make(map[string]bool)
	result := RevSet{}
	for head, err := range env.Store.TreePushHeads(ctx, tree.Name) {
		if err != nil {
			return nil, err
		}
		// Some recorded pushes name heads that do not exist locally
		node, err := env.Graph.Resolve(head.Head)
		if err != nil {
			continue
		}
		if _, ok := members[node]; !ok || seen[node] {
			continue
		}
		seen[node] = true
		result = append(result, node)
	}
	return result, nil
}

func lookupTree(trees *config.Trees, name string) (config.Tree, error) {
	tree, ok := trees.Lookup(name)
	if !ok {
		return config.Tree{}, pushlogerrors.NewUnknownTreeError(name)
	}
	return tree, nil
}
