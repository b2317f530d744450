// Package commitparser extracts bug numbers and reviewers from commit messages.
package commitparser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxBug is the first value that is no longer treated as a bug number
const maxBug = 100000000

// DontBuildMarker in a description asks automation to skip builds for the push
const DontBuildMarker = "DONTBUILD"

var (
	// "bug 123", "Bug #123", "b=123"
	explicitBugRE = regexp.MustCompile(`(?i)(?:\bbug|\bb=)\s*#?(\d+)\b`)
	// a standalone number of five or more digits
	bareBugRE = regexp.MustCompile(`(?:^|[^\w#=])#?(\d{5,})\b`)
	// a number at the very start of the message
	leadingBugRE = regexp.MustCompile(`^(\d+)\b`)

	flagRE = regexp.MustCompile(`(?:^|[\s(.\[;,])(r|a|sr|rs|ui-r)[=?]`)
	nickRE = regexp.MustCompile(`^[a-zA-Z0-9\-_]+!?`)
	listRE = regexp.MustCompile(`^[;,/\\]\s*`)
	// a nick immediately followed by a flag starts the next specifier
	nextFlagRE = regexp.MustCompile(`^[a-zA-Z0-9.\-]+[=?]`)
)

// reviewFlags are the specifiers whose names count as reviewers
var reviewFlags = map[string]bool{"r": true, "sr": true, "rs": true}

type bugMatch struct {
	pos int
	bug int
}

// ParseBugs returns the bug numbers referenced by desc in order of first
// appearance, without duplicates.
func ParseBugs(desc string) []int {
	var matches []bugMatch
	for _, re := range []*regexp.Regexp{explicitBugRE, bareBugRE, leadingBugRE} {
		for _, m := range re.FindAllStringSubmatchIndex(desc, -1) {
			n, err := strconv.Atoi(desc[m[2]:m[3]])
			if err != nil || n >= maxBug {
				continue
			}
			matches = append(matches, bugMatch{pos: m[2], bug: n})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	seen := make(map[int]bool)
	bugs := []int{}
	for _, m := range matches {
		if seen[m.bug] {
			continue
		}
		seen[m.bug] = true
		bugs = append(bugs, m.bug)
	}
	return bugs
}

// HasBug reports whether desc references bug
func HasBug(desc string, bug int) bool {
	for _, b := range ParseBugs(desc) {
		if b == bug {
			return true
		}
	}
	return false
}

// ParseReviewers returns the reviewers named in the summary line of desc.
// Approvals (a=) are not reviews.
func ParseReviewers(desc string) []string {
	summary, _, _ := strings.Cut(desc, "\n")

	reviewers := []string{}
	for _, m := range flagRE.FindAllStringSubmatchIndex(summary, -1) {
		flag := summary[m[2]:m[3]]
		names := scanNicks(summary[m[1]:])
		if !reviewFlags[flag] {
			continue
		}
		for _, name := range names {
			reviewers = append(reviewers, strings.TrimSuffix(name, "!"))
		}
	}
	return reviewers
}

// scanNicks reads a delimited list of nicks from the start of s, stopping
// before a nick that begins the next specifier.
func scanNicks(s string) []string {
	first := nickRE.FindString(s)
	if first == "" {
		return nil
	}
	nicks := []string{first}
	rest := s[len(first):]

	for {
		delim := listRE.FindString(rest)
		if delim == "" {
			break
		}
		after := rest[len(delim):]
		if nextFlagRE.MatchString(after) {
			break
		}
		nick := nickRE.FindString(after)
		if nick == "" {
			break
		}
		nicks = append(nicks, nick)
		rest = after[len(nick):]
	}
	return nicks
}

// HasReviewer reports whether name reviewed the change described by desc
func HasReviewer(desc, name string) bool {
	for _, r := range ParseReviewers(desc) {
		if r == name {
			return true
		}
	}
	return false
}

// HasDontBuild reports whether desc carries the build skip marker
func HasDontBuild(desc string) bool {
	return strings.Contains(desc, DontBuildMarker)
}
