package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pushlog.dev/pushlog/internal/provenance"
)

type field struct {
	name  string
	value string
}

// RenderReport writes a provenance report as "name: value" lines, skipping
// fields without a value
func RenderReport(w io.Writer, r *provenance.Report, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	formatDate := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(loc).Format(DateLayout)
	}
	formatDates := func(ts []time.Time) string {
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, formatDate(t))
		}
		return strings.Join(out, ", ")
	}
	bugs := make([]string, 0, len(r.Bugs))
	for _, bug := range r.Bugs {
		bugs = append(bugs, strconv.Itoa(bug))
	}

	fields := []field{
		{"changeset", r.Node},
		{"bugs", strings.Join(bugs, ", ")},
		{"reviewers", strings.Join(r.Reviewers, ", ")},
		{"first push tree", r.FirstPushTree},
		{"first push user", r.FirstPushUser},
		{"first push date", formatDate(r.FirstPushDate)},
		{"first push treeherder", r.FirstPushTreeherder},
		{"push dates", formatDates(r.PushDates)},
		{"push head dates", formatDates(r.PushHeadDates)},
		{"trees", strings.Join(r.Trees, ", ")},
		{"release trees", strings.Join(r.ReleaseTrees, ", ")},
		{"first release", r.FirstRelease},
		{"first beta", r.FirstBeta},
		{"first aurora", r.FirstAurora},
		{"aurora date", r.AuroraDate},
		{"first nightly", r.FirstNightly},
		{"nightly date", r.NightlyDate},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
