package provenance

import (
	"context"
	"time"

	"pushlog.dev/pushlog/internal/commitparser"
)

// Report collects everything known about where and when a changeset landed
type Report struct {
	Node      string
	Bugs      []int
	Reviewers []string

	FirstPushUser       string
	FirstPushTree       string
	FirstPushDate       time.Time
	FirstPushTreeherder string

	PushDates     []time.Time
	PushHeadDates []time.Time
	Trees         []string
	ReleaseTrees  []string

	FirstRelease string
	FirstBeta    string
	FirstAurora  string
	FirstNightly string
	AuroraDate   string
	NightlyDate  string
}

// Pushed reports whether any push of the changeset is recorded
func (r *Report) Pushed() bool {
	return r.FirstPushTree != ""
}

// Report builds the provenance report for a revision
func (x *Index) Report(ctx context.Context, revision string) (*Report, error) {
	commit, err := x.graph.Commit(revision)
	if err != nil {
		return nil, err
	}
	node := commit.Node

	report := &Report{
		Node:      node,
		Bugs:      commitparser.ParseBugs(commit.Description),
		Reviewers: commitparser.ParseReviewers(commit.Description),
	}

	first, ok, err := x.FirstPush(ctx, node)
	if err != nil {
		return nil, err
	}
	if ok {
		report.FirstPushUser = first.User
		report.FirstPushTree = first.Tree
		report.FirstPushDate = first.When
		report.FirstPushTreeherder = x.TreeherderURL(first.Tree, first.Head)
	}
	pushes, err := x.Pushes(ctx, node)
	if err != nil {
		return nil, err
	}
	isHead := false
	if len(pushes) > 0 {
		if isHead, err = x.IsPushHead(ctx, node, ""); err != nil {
			return nil, err
		}
	}
	for _, p := range pushes {
		report.PushDates = append(report.PushDates, p.When)
		if isHead && p.Head == node {
			report.PushHeadDates = append(report.PushHeadDates, p.When)
		}
		report.Trees = append(report.Trees, p.Tree)
		if x.IsReleaseTree(p.Tree) {
			report.ReleaseTrees = append(report.ReleaseTrees, p.Tree)
		}
	}

	if report.FirstRelease, _, err = x.FirstVersion(ctx, node, ReleaseKind); err != nil {
		return nil, err
	}
	if report.FirstBeta, _, err = x.FirstVersion(ctx, node, BetaKind); err != nil {
		return nil, err
	}
	if report.FirstAurora, _, err = x.ReleaseMilestone(ctx, node, AuroraTree); err != nil {
		return nil, err
	}
	if report.FirstNightly, _, err = x.ReleaseMilestone(ctx, node, NightlyTree); err != nil {
		return nil, err
	}
	if report.AuroraDate, _, err = x.NextDailyRelease(ctx, node, AuroraTree); err != nil {
		return nil, err
	}
	if report.NightlyDate, _, err = x.NextDailyRelease(ctx, node, NightlyTree); err != nil {
		return nil, err
	}
	return report, nil
}
