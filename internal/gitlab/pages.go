package gitlab

import (
	"fmt"
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// groupRecord is the subset of a group listing the export needs.
type groupRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type projectRecord struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	NameWithNamespace string `json:"name_with_namespace"`
}

type commitRecord struct {
	Title          string `json:"title"`
	CommitterEmail string `json:"committer_email"`
	CommittedDate  string `json:"committed_date"`
}

func mapGroups(records []groupRecord) ([]schema.Group, error) {
	groups := make([]schema.Group, len(records))
	for i, r := range records {
		groups[i] = schema.Group{ID: r.ID, Name: r.Name, Path: r.Path}
	}
	return groups, nil
}

func mapProjects(records []projectRecord) ([]schema.Project, error) {
	projects := make([]schema.Project, len(records))
	for i, r := range records {
		projects[i] = schema.Project{ID: r.ID, Name: r.Name, NameWithNamespace: r.NameWithNamespace}
	}
	return projects, nil
}

func mapCommits(records []commitRecord) ([]schema.Commit, error) {
	commits := make([]schema.Commit, len(records))
	for i, r := range records {
		day, err := CalendarDay(r.CommittedDate)
		if err != nil {
			return nil, err
		}
		commits[i] = schema.Commit{
			Message:        r.Title,
			CommitterEmail: r.CommitterEmail,
			CommittedDate:  day,
		}
	}
	return commits, nil
}

// CalendarDay truncates an RFC 3339 timestamp to YYYY-MM-DD in the timestamp's own offset.
func CalendarDay(ts string) (string, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		// Bare dates are already calendar days
		if d, derr := time.Parse(contract.DateFormat, ts); derr == nil {
			return d.Format(contract.DateFormat), nil
		}
		return "", fmt.Errorf("invalid committed_date %q: %w", ts, err)
	}
	return t.Format(contract.DateFormat), nil
}
