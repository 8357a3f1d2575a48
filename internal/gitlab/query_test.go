package gitlab

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, q Query) (string, url.Values) {
	t.Helper()
	path, raw, ok := strings.Cut(q.URL, "?")
	require.True(t, ok, "url %q has no query", q.URL)
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return path, values
}

func TestBuildQueryNoFilters(t *testing.T) {
	q := BuildQuery(GroupsEndpoint, NoFilters(), 1, QueryInputs{})

	path, values := parseQuery(t, q)
	assert.Equal(t, "/groups", path)
	assert.Equal(t, map[string]string{"sort": "asc", "per_page": "100", "page": "1"}, q.Filters)
	assert.Equal(t, "asc", values.Get("sort"))
	assert.Equal(t, "100", values.Get("per_page"))
	assert.Equal(t, "1", values.Get("page"))
	assert.Empty(t, values.Get("visibility"))
}

func TestBuildQueryNoPage(t *testing.T) {
	q := BuildQuery(GroupsEndpoint, NoFilters(), 0, QueryInputs{})
	_, values := parseQuery(t, q)
	assert.False(t, values.Has("page"))
	assert.NotContains(t, q.Filters, "page")
}

func TestBuildQueryScopeDefaults(t *testing.T) {
	q := BuildQuery(ProjectsEndpoint, Flags(), 0, QueryInputs{})
	assert.Equal(t, map[string]string{
		"sort":       "asc",
		"per_page":   "100",
		"visibility": "internal",
		"archived":   "false",
		"order_by":   "last_activity_at",
		"all":        "true",
		"simple":     "true",
	}, q.Filters)
}

func TestBuildQueryCommitFlags(t *testing.T) {
	in := QueryInputs{From: "2024-01-01", To: "2024-01-31", Branch: "develop"}
	q := BuildQuery(CommitsEndpoint(42), Flags(FlagFrom, FlagTo, FlagBranch), 3, in)

	path, values := parseQuery(t, q)
	assert.Equal(t, "/projects/42/repository/commits", path)
	assert.Equal(t, "2024-01-01T00:00:00Z", values.Get("since"))
	assert.Equal(t, "2024-01-31T23:59:59Z", values.Get("until"))
	assert.Equal(t, "develop", values.Get("ref_name"))
	assert.Equal(t, "3", values.Get("page"))
}

func TestBuildQueryBranchDefaultsToMaster(t *testing.T) {
	q := BuildQuery(CommitsEndpoint(1), Flags(FlagFrom, FlagTo, FlagBranch), 0, QueryInputs{})
	assert.Equal(t, "master", q.Filters["ref_name"])
	assert.NotContains(t, q.Filters, "since")
	assert.NotContains(t, q.Filters, "until")
}

func TestBuildQueryProjectFlag(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		expected string
		present  bool
	}{
		{"plain search", "api", "api", true},
		{"wildcard stripped", "api*", "api", true},
		{"every wildcard stripped", "*api*", "api", true},
		{"not supplied", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildQuery(ProjectsEndpoint, Flags(FlagProject), 1, QueryInputs{Project: tt.project})
			got, ok := q.Filters["search"]
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildQueryLiteral(t *testing.T) {
	literal := map[string]string{"sort": "desc", "project": "api", "membership": "true"}

	q := BuildQuery(ProjectsEndpoint, Literal(literal), 0, QueryInputs{})
	assert.Equal(t, "desc", q.Filters["sort"])
	assert.Equal(t, "true", q.Filters["membership"])
	assert.Equal(t, "internal", q.Filters["visibility"])
	assert.NotContains(t, q.Filters, "project")

	q = BuildQuery(ProjectsEndpoint, Literal(literal), 0, QueryInputs{Project: "api"})
	assert.Equal(t, "api", q.Filters["project"])

	// the caller's map is never mutated
	assert.Contains(t, literal, "project")
}

func TestBuildQueryIsPure(t *testing.T) {
	in := QueryInputs{From: "2024-01-01", Branch: "main"}
	spec := Flags(FlagFrom, FlagBranch)
	a := BuildQuery(CommitsEndpoint(7), spec, 2, in)
	b := BuildQuery(CommitsEndpoint(7), spec, 2, in)
	assert.Equal(t, a, b)
}
