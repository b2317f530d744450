package provenance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pushlog.dev/pushlog/internal/config"
	"pushlog.dev/pushlog/internal/provenance"
	"pushlog.dev/pushlog/testhelpers"
)

var base = time.Date(2016, 3, 21, 12, 0, 0, 0, time.UTC)

func TestFirstPushAndPushHeads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := testhelpers.NewFakeGraph()
	graph.Chain("", "c1", "c2", "c3")
	s := testhelpers.OpenStore(t)
	testhelpers.RecordPush(t, s, "inbound", 10, "alice", base, "c1", "c2")
	testhelpers.RecordPush(t, s, "central", 3, "bob", base.Add(time.Hour), "c1", "c2", "c3")

	x := provenance.New(s, graph, nil, provenance.Options{})
	require.True(t, x.Enabled())

	first, ok, err := x.FirstPush(ctx, "c2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "inbound", first.Tree)
	require.Equal(t, int64(10), first.ID)

	onCentral, ok, err := x.FirstPushTo(ctx, "c2", "central")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bob", onCentral.User)

	_, ok, err = x.FirstPush(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)

	for _, tc := range []struct {
		node, tree string
		want       bool
	}{
		{"c2", "", true},
		{"c2", "inbound", true},
		{"c2", "central", false},
		{"c3", "central", true},
		{"c1", "", false},
	} {
		got, err := x.IsPushHead(ctx, tc.node, tc.tree)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s on %q", tc.node, tc.tree)
	}
}

func TestReleaseMilestone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := testhelpers.NewFakeGraph()
	graph.Chain("", "c1", "c2", "c3")
	graph.SetFile("c2", config.DefaultMilestonePath, "# Holds the current milestone.\n\n47.0a1\n48.0\n")
	s := testhelpers.OpenStore(t)
	testhelpers.RecordPush(t, s, "central", 1, "alice", base, "c1", "c2")
	testhelpers.RecordPush(t, s, "central", 2, "alice", base, "c3")

	x := provenance.New(s, graph, nil, provenance.Options{})

	milestone, ok, err := x.ReleaseMilestone(ctx, "c1", "central")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "47.0a1", milestone)

	// Push head without the file
	_, ok, err = x.ReleaseMilestone(ctx, "c3", "central")
	require.NoError(t, err)
	require.False(t, ok)

	// No push to the tree
	_, ok, err = x.ReleaseMilestone(ctx, "c1", "aurora")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParseMilestone(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		data string
		want string
		ok   bool
	}{
		{"47.0a1\n", "47.0a1", true},
		{"#comment\n   \n45.0\r\n", "45.0", true},
		{"# only comments\n\n", "", false},
		{"", "", false},
	} {
		got, ok := provenance.ParseMilestone([]byte(tc.data))
		require.Equal(t, tc.ok, ok, tc.data)
		require.Equal(t, tc.want, got, tc.data)
	}
}

func TestDailyBuildDate(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		when time.Time
		want string
	}{
		// 02:00 PDT, before the build starts
		{time.Date(2016, 3, 21, 9, 0, 0, 0, time.UTC), "2016-03-21"},
		// 04:00 PDT, next day's build
		{time.Date(2016, 3, 21, 11, 0, 0, 0, time.UTC), "2016-03-22"},
		// 02:30 PST
		{time.Date(2016, 1, 10, 10, 30, 0, 0, time.UTC), "2016-01-10"},
		// 03:00 PST
		{time.Date(2016, 1, 10, 11, 0, 0, 0, time.UTC), "2016-01-11"},
		// previous evening in California
		{time.Date(2016, 1, 10, 2, 0, 0, 0, time.UTC), "2016-01-10"},
	} {
		got, err := provenance.DailyBuildDate(tc.when)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, tc.when.String())
	}
}

func TestTreeherderURL(t *testing.T) {
	t.Parallel()
	x := provenance.New(nil, testhelpers.NewFakeGraph(), nil, provenance.Options{})
	require.Equal(t,
		"https://treeherder.mozilla.org/#/jobs?repo=mozilla-central&revision=abcdef",
		x.TreeherderURL("central", "abcdef"))
	require.Equal(t,
		"https://treeherder.mozilla.org/#/jobs?repo=autoland&revision=abcdef",
		x.TreeherderURL("autoland", "abcdef"))
	require.Empty(t, x.TreeherderURL("unknown", "abcdef"))

	custom := provenance.New(nil, testhelpers.NewFakeGraph(), nil, provenance.Options{TreeherderURL: "https://th.example.com/"})
	require.Equal(t,
		"https://th.example.com/#/jobs?repo=mozilla-beta&revision=ff",
		custom.TreeherderURL("beta", "ff"))
}

func TestDisabledIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := testhelpers.NewFakeGraph()
	graph.Chain("", "c1")
	x := provenance.New(nil, graph, nil, provenance.Options{})
	require.False(t, x.Enabled())

	_, ok, err := x.FirstPush(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)

	head, err := x.IsPushHead(ctx, "c1", "")
	require.NoError(t, err)
	require.False(t, head)

	versions, err := x.ReleaseVersions(ctx, provenance.BetaKind)
	require.NoError(t, err)
	require.Empty(t, versions)

	report, err := x.Report(ctx, "c1")
	require.NoError(t, err)
	require.False(t, report.Pushed())
	require.Empty(t, report.FirstBeta)
}
