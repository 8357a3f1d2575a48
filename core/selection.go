package core

import (
	"slices"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// Labels passed to the Selector.
const (
	LabelGroups     = "groups"
	LabelProjects   = "projects"
	LabelAuthors    = "authors"
	LabelOutputFile = "output file"
)

// choose returns [preset] when it is one of keys, otherwise asks the selector
// to pick from the sorted, distinct keys.
func choose(selector contract.Selector, label, preset string, keys []string) ([]string, error) {
	if preset != "" && slices.Contains(keys, preset) {
		return []string{preset}, nil
	}
	choices := slices.Clone(keys)
	slices.Sort(choices)
	choices = slices.Compact(choices)

	chosen, err := selector.Select(label, choices)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, &contract.SelectionError{Label: label}
	}
	return chosen, nil
}

// chooseGroups picks the groups to export by path.
func chooseGroups(selector contract.Selector, cfg *contract.Config, groups []schema.Group) ([]schema.Group, error) {
	paths, err := choose(selector, LabelGroups, cfg.Group, schema.GroupPaths(groups))
	if err != nil {
		return nil, err
	}
	return keepByKey(groups, paths, func(g schema.Group) string { return g.Path }), nil
}

// chooseProjects picks the projects to export by name.
// Every project carrying a chosen name is kept.
func chooseProjects(selector contract.Selector, cfg *contract.Config, projects []schema.Project) ([]schema.Project, error) {
	names, err := choose(selector, LabelProjects, cfg.Project, schema.ProjectNames(projects))
	if err != nil {
		return nil, err
	}
	return keepByKey(projects, names, func(p schema.Project) string { return p.Name }), nil
}

// chooseAuthors picks the committer emails to keep.
func chooseAuthors(selector contract.Selector, cfg *contract.Config, authors []string) ([]string, error) {
	return choose(selector, LabelAuthors, cfg.Email, authors)
}

// chooseOutputFile resolves the target file of a file-based export.
// Terminal output has no file.
func chooseOutputFile(selector contract.Selector, cfg *contract.Config) (string, error) {
	ext := cfg.Output.FileExtension()
	if ext == "" {
		return "", nil
	}
	name := cfg.OutputFile
	if name == "" {
		var err error
		if name, err = selector.Input(LabelOutputFile); err != nil {
			return "", err
		}
	}
	return contract.EnsureExtension(name, ext), nil
}

// keepByKey keeps the items whose key is in keys, in item order.
func keepByKey[T any](items []T, keys []string, key func(T) string) []T {
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	kept := make([]T, 0, len(keys))
	for _, it := range items {
		if _, ok := wanted[key(it)]; ok {
			kept = append(kept, it)
		}
	}
	return kept
}
