package digest

import (
	"strings"
	"testing"

	"github.com/huangsam/glexport/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commit(date, email, msg string) schema.Commit {
	return schema.Commit{Message: msg, CommitterEmail: email, CommittedDate: date}
}

func TestBuildSingleDayWithMerge(t *testing.T) {
	commits := []schema.Commit{
		commit("2024-01-01", "a@x", "fix bug"),
		commit("2024-01-01", "b@x", "- already dashed"),
		commit("2024-01-01", "c@x", "Merge branch 'x'"),
	}

	export := Build(commits, []string{"a@x", "b@x", "c@x"}, true)
	require.Equal(t, 1, export.Len())
	group, ok := export.Get("2024-01-01")
	require.True(t, ok)
	assert.Equal(t, strings.Join([]string{"- fix bug", "- already dashed"}, LineSeparator), group.Messages)
}

func TestBuildInterleavesProjects(t *testing.T) {
	// project A's commits come first in the flattened stream, then project B's
	commits := []schema.Commit{
		commit("2024-01-01", "a@x", "a1"),
		commit("2024-01-03", "a@x", "a3"),
		commit("2024-01-02", "a@x", "b2"),
		commit("2024-01-01", "a@x", "b1"),
	}

	export := Build(commits, []string{"a@x"}, false)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, export.Dates())
	day1, _ := export.Get("2024-01-01")
	assert.Equal(t, "- a1"+LineSeparator+"- b1", day1.Messages)
}

func TestBuildEmpty(t *testing.T) {
	export := Build(nil, []string{"a@x"}, true)
	assert.Zero(t, export.Len())
	assert.NotNil(t, export.Groups)
}

func TestFilterMergeCommits(t *testing.T) {
	commits := []schema.Commit{
		commit("d", "e", "MERGE BRANCH 'main' into dev"),
		commit("d", "e", "Merged branch"),
		commit("d", "e", "merge branch"),
		commit("d", "e", "regular"),
	}
	kept := FilterMergeCommits(commits)
	assert.Equal(t, []string{"Merged branch", "regular"}, messages(kept))

	// toggled off keeps everything
	export := Build(commits, []string{"e"}, false)
	require.Equal(t, 1, export.Len())
	assert.Len(t, strings.Split(export.Groups[0].Messages, LineSeparator), 4)
}

func TestFilterByAuthorsCaseSensitive(t *testing.T) {
	commits := []schema.Commit{
		commit("d", "Dev@Example.com", "upper"),
		commit("d", "dev@example.com", "lower"),
	}
	kept := FilterByAuthors(commits, []string{"dev@example.com"})
	assert.Equal(t, []string{"lower"}, messages(kept))
	assert.Empty(t, FilterByAuthors(commits, nil))
}

func TestGroupByDateIdempotent(t *testing.T) {
	commits := []schema.Commit{
		commit("2024-01-02", "e", "x"),
		commit("2024-01-01", "e", "y"),
		commit("2024-01-02", "e", "z"),
	}
	dates, grouped := GroupByDate(commits)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, dates)
	assert.Equal(t, []string{"x", "z"}, messages(grouped["2024-01-02"]))

	var flattened []schema.Commit
	for _, d := range dates {
		flattened = append(flattened, grouped[d]...)
	}
	dates2, grouped2 := GroupByDate(flattened)
	assert.Equal(t, dates, dates2)
	assert.Equal(t, grouped, grouped2)
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fix bug", "- fix bug"},
		{"- already dashed", "- already dashed"},
		{"-- double dashed", "-- double dashed"},
		{"-\ttab dashed", "-\ttab dashed"},
		{"-no space", "- -no space"},
		{"", "- "},
		{" - leading space", "-  - leading space"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMessage(tt.input))
		})
	}
}

func TestAuthors(t *testing.T) {
	commits := []schema.Commit{
		commit("d", "b@x", "1"),
		commit("d", "a@x", "2"),
		commit("d", "b@x", "3"),
	}
	assert.Equal(t, []string{"a@x", "b@x"}, Authors(commits))
	assert.Empty(t, Authors(nil))
}

func TestLineSeparator(t *testing.T) {
	assert.Equal(t, "\r\n", lineSeparator("windows"))
	assert.Equal(t, "\n", lineSeparator("linux"))
}

func messages(commits []schema.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Message
	}
	return out
}
