// Package schema has the models shared by all parts of glexport.
package schema

// Group is a namespace that owns zero or more projects.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"` // selectable key, unique among fetched groups
}

// Project is a single repository under a group or standalone.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"` // selectable key
	NameWithNamespace string `json:"name_with_namespace"`
}

// Commit is one recorded change reduced to the fields the export needs.
type Commit struct {
	Message        string `json:"message"`
	CommitterEmail string `json:"committer_email"`
	CommittedDate  string `json:"committed_date"` // YYYY-MM-DD
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
	// HasTotal is false when the response carried no total-page header.
	HasTotal bool `json:"has_total"`
}

// DateGroup is a single export record: every selected message of one day.
type DateGroup struct {
	Date     string `json:"date"`
	Messages string `json:"messages"`
}

// GroupedExport is the date-grouped result handed to an export sink.
// Groups are always ordered by ascending date.
type GroupedExport struct {
	Groups []DateGroup `json:"groups"`
}

// Get returns the group for a date key.
func (g GroupedExport) Get(date string) (DateGroup, bool) {
	for _, dg := range g.Groups {
		if dg.Date == date {
			return dg, true
		}
	}
	return DateGroup{}, false
}

// Dates returns the date keys in ascending order.
func (g GroupedExport) Dates() []string {
	dates := make([]string, len(g.Groups))
	for i, dg := range g.Groups {
		dates[i] = dg.Date
	}
	return dates
}

// Len returns the number of date groups.
func (g GroupedExport) Len() int {
	return len(g.Groups)
}

// GroupPaths returns the selectable keys of the groups.
func GroupPaths(groups []Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Path
	}
	return keys
}

// ProjectNames returns the selectable keys of the projects.
func ProjectNames(projects []Project) []string {
	keys := make([]string, len(projects))
	for i, p := range projects {
		keys[i] = p.Name
	}
	return keys
}
