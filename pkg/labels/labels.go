package labels

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

// Result describes one label migration run. Mapping translates source label
// names to the names issues should carry on the target, which are the
// canonical names of existing target labels when a case-insensitive match
// was found.
type Result struct {
	Mapping  map[string]string
	Existing int
	Created  int
}

// Translated reports how many source names were changed by a rule
func (r *Result) Translated() int {
	translated := 0
	for src, dst := range r.Mapping {
		if !strings.EqualFold(src, dst) {
			translated++
		}
	}
	return translated
}

// Migrate copies the source project's labels onto the target repository.
// The target treats label names case-insensitively, so a source "bug" maps
// onto an existing "Bug" instead of creating a duplicate.
func Migrate(src source.System, tgt target.System, translator *Translator, logger logr.Logger) (*Result, error) {
	existing, err := tgt.ListLabels()
	if err != nil {
		return nil, &LabelError{
			Type:    "migration_error",
			Message: "failed to list target labels",
			Err:     err,
		}
	}

	// lowercase name -> canonical name on the target
	canonical := make(map[string]string, len(existing))
	for _, label := range existing {
		canonical[strings.ToLower(label.Name)] = label.Name
	}

	sourceLabels, err := src.GetLabels()
	if err != nil {
		return nil, &LabelError{
			Type:    "migration_error",
			Message: "failed to list source labels",
			Err:     err,
		}
	}

	result := &Result{Mapping: make(map[string]string, len(sourceLabels))}

	for _, label := range sourceLabels {
		translated := translator.Translate(label.Name)

		if existingName, found := canonical[strings.ToLower(translated)]; found {
			result.Mapping[label.Name] = existingName
			result.Existing++
			logger.V(1).Info("using existing label", "source", label.Name, "target", existingName)
			continue
		}

		created := schema.Label{
			Name:        translated,
			Color:       label.Color,
			Description: label.Description,
		}
		if err := tgt.CreateLabel(created); err != nil {
			return nil, &LabelError{
				Type:    "migration_error",
				Message: "failed to create label",
				Err:     err,
				Context: translated,
			}
		}

		result.Mapping[label.Name] = translated
		result.Created++
		canonical[strings.ToLower(translated)] = translated
		logger.V(1).Info("created label", "source", label.Name, "target", translated)
	}

	logger.Info("migrated labels",
		"total", len(result.Mapping), "created", result.Created, "existing", result.Existing)
	return result, nil
}
