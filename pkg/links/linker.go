// Package links creates parent/child and blocking relationships between
// migrated issues. Linking is a second pass that runs after every issue
// exists at its final number; the relationship data is collected during
// issue creation and replayed here.
package links

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

// IssueRelations holds the relationship data collected for one source issue
type IssueRelations struct {
	Number   int
	Children []schema.WorkItemChild
	Links    []schema.IssueLink
}

// Result summarizes one linking pass
type Result struct {
	SubIssues    int
	Dependencies int
	Skipped      int
}

// Total returns the number of structured relationships created
func (r *Result) Total() int {
	return r.SubIssues + r.Dependencies
}

// Linker replays collected relationships against the target
type Linker struct {
	target target.System
	logger logr.Logger
}

// NewLinker creates a linker
func NewLinker(tgt target.System, logger logr.Logger) *Linker {
	return &Linker{target: tgt, logger: logger}
}

// Apply creates sub-issue and blocking relationships. migrated is the set of
// issue numbers that exist on the target; relationships pointing outside it
// are skipped with a warning rather than failing the run. Blocking links are
// deduplicated first: the source reports each dependency from both ends
// ("blocks" on one issue, "is_blocked_by" on the other), and both normalize
// to the same (blocker, blocked) pair.
func (l *Linker) Apply(relations []IssueRelations, migrated map[int]bool) (*Result, error) {
	result := &Result{}

	for _, rel := range relations {
		for _, child := range rel.Children {
			if !migrated[child.Number] {
				l.logger.Info("skipping sub-issue link, child was not migrated",
					"parent", rel.Number, "child", child.Number)
				result.Skipped++
				continue
			}
			if err := l.target.AddSubIssue(rel.Number, child.Number); err != nil {
				return result, &LinkError{
					Type:    "linking_error",
					Message: "failed to add sub-issue",
					Err:     err,
					Context: childContext(rel.Number, child.Number),
				}
			}
			result.SubIssues++
		}
	}

	supported := true
	for _, dep := range collectDependencies(relations) {
		if !migrated[dep.blocker] || !migrated[dep.blocked] {
			l.logger.Info("skipping dependency, endpoint was not migrated",
				"blocker", dep.blocker, "blocked", dep.blocked)
			result.Skipped++
			continue
		}
		if !supported {
			result.Skipped++
			continue
		}

		created, err := l.target.CreateDependency(dep.blocked, dep.blocker)
		if err != nil {
			return result, &LinkError{
				Type:    "linking_error",
				Message: "failed to create dependency",
				Err:     err,
				Context: childContext(dep.blocked, dep.blocker),
			}
		}
		if !created {
			l.logger.Info("issue dependencies are not available, skipping remaining blocking links")
			supported = false
			result.Skipped++
			continue
		}
		result.Dependencies++
	}

	l.logger.Info("created relationships",
		"subIssues", result.SubIssues, "dependencies", result.Dependencies, "skipped", result.Skipped)
	return result, nil
}

type dependency struct {
	blocker int
	blocked int
}

// collectDependencies normalizes blocking links from both directions into
// unique (blocker, blocked) pairs, preserving first-seen order. Cross-project
// and "related" links are not structured relationships and are ignored here.
func collectDependencies(relations []IssueRelations) []dependency {
	seen := make(map[dependency]bool)
	var deps []dependency

	for _, rel := range relations {
		for _, link := range rel.Links {
			if !link.SameProject {
				continue
			}

			var dep dependency
			switch link.Kind {
			case schema.LinkKindBlocks:
				dep = dependency{blocker: rel.Number, blocked: link.TargetNumber}
			case schema.LinkKindIsBlockedBy:
				dep = dependency{blocker: link.TargetNumber, blocked: rel.Number}
			default:
				continue
			}

			if seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
	}

	return deps
}

func childContext(a, b int) string {
	return fmt.Sprintf("#%d -> #%d", a, b)
}
