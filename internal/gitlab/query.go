// Package gitlab talks to a GitLab-compatible REST API: it builds list queries,
// fetches single pages and maps the JSON records into schema types.
package gitlab

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/huangsam/glexport/internal/contract"
)

// List endpoints relative to the API base URL.
const (
	GroupsEndpoint   = "/groups"
	ProjectsEndpoint = "/projects"
)

// GroupProjectsEndpoint lists the projects of one group.
func GroupProjectsEndpoint(groupID int) string {
	return fmt.Sprintf("/groups/%d/projects", groupID)
}

// CommitsEndpoint lists the commits of one project.
func CommitsEndpoint(projectID int) string {
	return fmt.Sprintf("/projects/%d/repository/commits", projectID)
}

// Flag names one configuration-driven filter.
type Flag int

// All flags understood by BuildQuery.
const (
	FlagFrom Flag = iota
	FlagTo
	FlagBranch
	FlagProject
)

type filterKind int

const (
	noFilters filterKind = iota
	flagFilters
	literalFilters
)

// FilterSpec selects which filters a query carries.
// Build one with NoFilters, Flags or Literal.
type FilterSpec struct {
	kind    filterKind
	flags   []Flag
	literal map[string]string
}

// NoFilters carries only the always-present defaults.
func NoFilters() FilterSpec {
	return FilterSpec{kind: noFilters}
}

// Flags adds the scope defaults plus one parameter per supplied flag.
func Flags(flags ...Flag) FilterSpec {
	return FilterSpec{kind: flagFilters, flags: flags}
}

// Literal adds the scope defaults and merges m over them.
func Literal(m map[string]string) FilterSpec {
	return FilterSpec{kind: literalFilters, literal: maps.Clone(m)}
}

// QueryInputs is the part of the configuration read by BuildQuery.
// Empty strings mean the value was not supplied.
type QueryInputs struct {
	From    string
	To      string
	Branch  string
	Project string
}

// InputsFromConfig extracts the query inputs from a validated config.
func InputsFromConfig(cfg *contract.Config) QueryInputs {
	return QueryInputs{
		From:    cfg.From,
		To:      cfg.To,
		Branch:  cfg.Branch,
		Project: cfg.Project,
	}
}

// Query is a request URL relative to the API base and the filters encoded in it.
type Query struct {
	URL     string
	Filters map[string]string
}

// BuildQuery produces the request URL for one page of a list endpoint.
// A page of zero or less leaves the page parameter out.
func BuildQuery(endpoint string, spec FilterSpec, page int, in QueryInputs) Query {
	filters := map[string]string{
		"sort":     "asc",
		"per_page": "100",
	}

	if spec.kind != noFilters {
		filters["visibility"] = "internal"
		filters["archived"] = "false"
		filters["order_by"] = "last_activity_at"
		filters["all"] = "true"
		filters["simple"] = "true"
	}

	switch spec.kind {
	case flagFilters:
		for _, f := range spec.flags {
			applyFlag(filters, f, in)
		}
	case literalFilters:
		for k, v := range spec.literal {
			if k == "project" && in.Project == "" {
				continue
			}
			filters[k] = v
		}
	}

	if page > 0 {
		filters["page"] = strconv.Itoa(page)
	}

	values := url.Values{}
	for k, v := range filters {
		values.Set(k, v)
	}
	return Query{
		URL:     endpoint + "?" + values.Encode(),
		Filters: filters,
	}
}

func applyFlag(filters map[string]string, f Flag, in QueryInputs) {
	switch f {
	case FlagTo:
		if in.To != "" {
			filters["until"] = in.To + "T23:59:59Z"
		}
	case FlagFrom:
		if in.From != "" {
			filters["since"] = in.From + "T00:00:00Z"
		}
	case FlagBranch:
		branch := in.Branch
		if branch == "" {
			branch = contract.DefaultBranch
		}
		filters["ref_name"] = branch
	case FlagProject:
		if in.Project != "" {
			filters["search"] = strings.ReplaceAll(in.Project, "*", "")
		}
	}
}
