package commitparser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBugs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		want []int
	}{
		{"Bug 123 - fix the thing", []int{123}},
		{"bug 123456: fix", []int{123456}},
		{"Bug #784841 - fix", []int{784841}},
		{"Fix crash; b=42 r=gps", []int{42}},
		{"123456 - leading number", []int{123456}},
		{"99 - short leading number", []int{99}},
		{"Backed out changeset abc (bug 5) for bug 6 and bug 5", []int{5, 6}},
		{"Merge 1234567 into release", []int{1234567}},
		{"No bug: update docs", []int{}},
		{"Bug 100000000 is not a bug", []int{}},
		{"version 1.2.3 tweak", []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ParseBugs(tc.desc))
		})
	}

	require.True(t, HasBug("Bug 784841 - x", 784841))
	require.False(t, HasBug("Bug 784841 - x", 78484))
}

func TestParseReviewers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		want []string
	}{
		{"Bug 1 - fix r=gps", []string{"gps"}},
		{"Bug 1 - fix r=gps,mak", []string{"gps", "mak"}},
		{"Bug 1 - fix; r=gps; sr=bz", []string{"gps", "bz"}},
		{"Bug 1 - fix r?smacleod", []string{"smacleod"}},
		{"Bug 1 - fix r=gps! a=release", []string{"gps"}},
		{"Bug 1 - fix r=gps, a=lsblakk", []string{"gps"}},
		{"Bug 1 - fix (r=glandium)", []string{"glandium"}},
		{"Bug 1 - fix a=release", []string{}},
		{"Bug 1 - no review", []string{}},
		{"Bug 1 - fix\n\nr=ignored because not in summary", []string{}},
		{"Bug 1 - fix for=loops", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ParseReviewers(tc.desc))
		})
	}

	require.True(t, HasReviewer("Bug 1 - r=gps", "gps"))
	require.False(t, HasReviewer("Bug 1 - r=gps", "mak"))
}

func TestHasDontBuild(t *testing.T) {
	t.Parallel()
	require.True(t, HasDontBuild("Bug 1 - docs only DONTBUILD"))
	require.False(t, HasDontBuild("Bug 1 - dontbuild"))
}
