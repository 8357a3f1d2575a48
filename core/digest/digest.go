// Package digest turns a flat commit stream into date-grouped export records.
// Everything here is pure: no I/O and deterministic for a given input.
package digest

import (
	"regexp"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/huangsam/glexport/schema"
)

// LineSeparator joins the messages of one date group.
var LineSeparator = lineSeparator(runtime.GOOS)

func lineSeparator(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}

// mergeMarker identifies merge commits by their message.
const mergeMarker = "merge branch"

// dashedPrefix matches messages that already start with a list marker.
var dashedPrefix = regexp.MustCompile(`^-+\s`)

// Build runs the whole transform: merge exclusion, author filter,
// grouping by day and message normalization.
func Build(commits []schema.Commit, authors []string, excludeMerges bool) schema.GroupedExport {
	if excludeMerges {
		commits = FilterMergeCommits(commits)
	}
	commits = FilterByAuthors(commits, authors)

	dates, grouped := GroupByDate(commits)
	export := schema.GroupedExport{Groups: make([]schema.DateGroup, 0, len(dates))}
	for _, date := range dates {
		export.Groups = append(export.Groups, FormatGroup(date, grouped[date]))
	}
	return export
}

// IsMergeCommit reports whether a message names a merged branch, ignoring case.
func IsMergeCommit(message string) bool {
	return strings.Contains(strings.ToLower(message), mergeMarker)
}

// FilterMergeCommits drops every merge commit and keeps the order of the rest.
func FilterMergeCommits(commits []schema.Commit) []schema.Commit {
	kept := make([]schema.Commit, 0, len(commits))
	for _, c := range commits {
		if !IsMergeCommit(c.Message) {
			kept = append(kept, c)
		}
	}
	return kept
}

// FilterByAuthors keeps commits whose committer email is one of authors.
// Matching is exact and case-sensitive.
func FilterByAuthors(commits []schema.Commit, authors []string) []schema.Commit {
	allowed := make(map[string]struct{}, len(authors))
	for _, a := range authors {
		allowed[a] = struct{}{}
	}
	kept := make([]schema.Commit, 0, len(commits))
	for _, c := range commits {
		if _, ok := allowed[c.CommitterEmail]; ok {
			kept = append(kept, c)
		}
	}
	return kept
}

// GroupByDate buckets commits by calendar day. The returned dates are
// ascending and every bucket keeps the input order of its commits.
func GroupByDate(commits []schema.Commit) ([]string, map[string][]schema.Commit) {
	grouped := make(map[string][]schema.Commit)
	for _, c := range commits {
		grouped[c.CommittedDate] = append(grouped[c.CommittedDate], c)
	}
	dates := make([]string, 0, len(grouped))
	for date := range grouped {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, grouped
}

// NormalizeMessage prefixes "- " unless the message already starts with dashes and whitespace.
func NormalizeMessage(message string) string {
	if dashedPrefix.MatchString(message) {
		return message
	}
	return "- " + message
}

// FormatGroup builds the export record of one day.
func FormatGroup(date string, commits []schema.Commit) schema.DateGroup {
	lines := make([]string, len(commits))
	for i, c := range commits {
		lines[i] = NormalizeMessage(c.Message)
	}
	return schema.DateGroup{Date: date, Messages: strings.Join(lines, LineSeparator)}
}

// Authors returns the distinct committer emails, sorted.
func Authors(commits []schema.Commit) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range commits {
		if _, ok := seen[c.CommitterEmail]; ok {
			continue
		}
		seen[c.CommitterEmail] = struct{}{}
		out = append(out, c.CommitterEmail)
	}
	slices.Sort(out)
	return out
}
