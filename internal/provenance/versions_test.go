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

func TestParseReleaseRef(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		branch  string
		version string
		ok      bool
	}{
		{"GECKO450b1_2016030721_RELBRANCH", "45.0b1", true},
		{"GECKO4501_2016041117_RELBRANCH", "45.01", true},
		{"GECKO20_2013010100_RELBRANCH", "2.0", true},
		{"GECKO36b10_2015021619_RELBRANCH", "3.6b10", true},
		{"GECKO9_2013010100_RELBRANCH", "", false},
		{"GECKO450_RELBRANCH", "", false},
		{"FIREFOX_45_0_RELEASE", "", false},
		{"GECKO450b1_2016030721_BUILD1", "", false},
	} {
		v, ok := provenance.ParseReleaseRef(tc.branch)
		require.Equal(t, tc.ok, ok, tc.branch)
		require.Equal(t, tc.version, v.Version, tc.branch)
	}

	v, ok := provenance.ParseReleaseRef("GECKO450b3_2016032117_RELBRANCH")
	require.True(t, ok)
	require.Equal(t, "45", v.Major)
	require.Equal(t, "0", v.Minor)
	require.Equal(t, "b", v.Marker)
	require.Equal(t, "3", v.After)
}

// releaseFixture builds
//
//	c1 - c2 - c3 - c4 - c5 - c6
//	           \
//	            s1
//
// with beta releases 45.0b1 at c2, 45.0b2 at c4, 45.0b3 at s1 and 46.0b1 at c6.
func releaseFixture(t *testing.T) (*provenance.Index, *testhelpers.FakeGraph) {
	t.Helper()
	graph := testhelpers.NewFakeGraph()
	graph.Chain("", "c1", "c2", "c3", "c4", "c5", "c6")
	graph.Add("s1", "c3")

	s := testhelpers.OpenStore(t)
	testhelpers.SetRefs(t, s, map[string]string{
		"beta/GECKO450b1_2016030721_RELBRANCH": "c2",
		"beta/GECKO450b2_2016031017_RELBRANCH": "c4",
		"beta/GECKO450b3_2016031417_RELBRANCH": "s1",
		"beta/GECKO460b1_2016042617_RELBRANCH": "c6",
		"beta/GECKO470b1_2016060617_RELBRANCH": "missing",
		"beta/default":                         "c6",
		"release/GECKO450_2016040412_RELBRANCH": "c4",
		"central/default":                       "c6",
	})
	return provenance.New(s, graph, nil, provenance.Options{}), graph
}

func TestReleaseVersions(t *testing.T) {
	t.Parallel()
	x, _ := releaseFixture(t)

	versions, err := x.ReleaseVersions(context.Background(), provenance.BetaKind)
	require.NoError(t, err)
	require.Equal(t, []string{"45.0b1", "45.0b2", "45.0b3", "46.0b1", "47.0b1"}, provenance.SortedVersions(versions))
	require.Equal(t, "c4", versions["45.0b2"].Node)
	require.Equal(t, "GECKO450b2_2016031017_RELBRANCH", versions["45.0b2"].Ref)

	releases, err := x.ReleaseVersions(context.Background(), provenance.ReleaseKind)
	require.NoError(t, err)
	require.Equal(t, []string{"45.0"}, provenance.SortedVersions(releases))
}

func TestEarliestVersionAncestors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	x, graph := releaseFixture(t)

	partition, err := x.VersionAncestors(ctx, provenance.BetaKind)
	require.NoError(t, err)

	require.Equal(t, set("c1", "c2"), partition["45.0b1"])
	require.Equal(t, set("c3", "c4"), partition["45.0b2"])
	require.Equal(t, set("s1"), partition["45.0b3"])
	require.Equal(t, set("c5", "c6"), partition["46.0b1"])
	require.NotContains(t, partition, "47.0b1")

	t.Run("partition is disjoint and covers every ancestor", func(t *testing.T) {
		versions, err := x.ReleaseVersions(ctx, provenance.BetaKind)
		require.NoError(t, err)

		var heads []string
		for _, v := range versions {
			if graph.Has(v.Node) {
				heads = append(heads, v.Node)
			}
		}
		all, err := graph.Ancestors(heads, true)
		require.NoError(t, err)

		union := make(map[string]struct{})
		for version, nodes := range partition {
			for node := range nodes {
				_, dup := union[node]
				require.False(t, dup, "%s claimed twice (%s)", node, version)
				union[node] = struct{}{}
			}
		}
		require.Equal(t, all, union)
	})

	t.Run("versions compare as strings", func(t *testing.T) {
		g := testhelpers.NewFakeGraph()
		g.Chain("", "a", "b")
		partition, err := provenance.EarliestVersionAncestors(g, map[string]provenance.ReleaseVersion{
			"9.0":  {Version: "9.0", Node: "a"},
			"10.0": {Version: "10.0", Node: "b"},
		})
		require.NoError(t, err)
		require.Equal(t, set("a", "b"), partition["10.0"])
		require.Empty(t, partition["9.0"])
	})

	t.Run("first version", func(t *testing.T) {
		for node, want := range map[string]string{"c1": "45.0b1", "c3": "45.0b2", "s1": "45.0b3", "c6": "46.0b1"} {
			got, ok, err := x.FirstVersion(ctx, node, provenance.BetaKind)
			require.NoError(t, err)
			require.True(t, ok, node)
			require.Equal(t, want, got, node)
		}

		got, ok, err := x.FirstVersion(ctx, "c5", provenance.ReleaseKind)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, got)
	})
}

func TestReleasesContaining(t *testing.T) {
	t.Parallel()
	x, _ := releaseFixture(t)

	releases, err := x.ReleasesContaining(context.Background(), "c3", provenance.BetaKind)
	require.NoError(t, err)
	require.Equal(t, []string{"45.0b2", "45.0b3", "46.0b1"}, releases)

	releases, err = x.ReleasesContaining(context.Background(), "s1", provenance.BetaKind)
	require.NoError(t, err)
	require.Equal(t, []string{"45.0b3"}, releases)
}

func TestReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	graph := testhelpers.NewFakeGraph()
	graph.Chain("", "c1", "c2")
	graph.Add("c3", "c2").Description = "Bug 1234567 - Fix the thing r=alice,bob"
	graph.SetFile("c3", config.DefaultMilestonePath, "47.0a1\n")

	s := testhelpers.OpenStore(t)
	pushed := time.Date(2016, 3, 21, 9, 0, 0, 0, time.UTC)
	testhelpers.RecordPush(t, s, "inbound", 7, "carol", pushed, "c2", "c3")
	testhelpers.RecordPush(t, s, "central", 4, "dave", pushed.Add(3*time.Hour), "c3")
	testhelpers.RecordPush(t, s, "beta", 2, "erin", pushed.Add(48*time.Hour), "c1", "c2", "c3")
	testhelpers.SetRefs(t, s, map[string]string{"beta/GECKO470b1_2016032300_RELBRANCH": "c3"})

	x := provenance.New(s, graph, nil, provenance.Options{})
	report, err := x.Report(ctx, "c3")
	require.NoError(t, err)

	require.Equal(t, "c3", report.Node)
	require.Equal(t, []int{1234567}, report.Bugs)
	require.Equal(t, []string{"alice", "bob"}, report.Reviewers)
	require.True(t, report.Pushed())
	require.Equal(t, "carol", report.FirstPushUser)
	require.Equal(t, "inbound", report.FirstPushTree)
	require.True(t, pushed.Equal(report.FirstPushDate))
	require.Equal(t, "https://treeherder.mozilla.org/#/jobs?repo=mozilla-inbound&revision=c3", report.FirstPushTreeherder)
	require.Equal(t, []string{"inbound", "central", "beta"}, report.Trees)
	require.Equal(t, []string{"beta"}, report.ReleaseTrees)
	require.Len(t, report.PushDates, 3)
	require.Len(t, report.PushHeadDates, 3)
	require.Equal(t, "47.0b1", report.FirstBeta)
	require.Empty(t, report.FirstRelease)
	require.Equal(t, "47.0a1", report.FirstNightly)
	require.Empty(t, report.FirstAurora)
	// 05:00 PDT on central
	require.Equal(t, "2016-03-22", report.NightlyDate)
	require.Empty(t, report.AuroraDate)

	// c2 rode along in two pushes but headed neither
	report, err = x.Report(ctx, "c2")
	require.NoError(t, err)
	require.Equal(t, "inbound", report.FirstPushTree)
	require.Len(t, report.PushDates, 2)
	require.Empty(t, report.PushHeadDates)
}

func set(nodes ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		s[n] = struct{}{}
	}
	return s
}
