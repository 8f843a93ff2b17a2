package schema

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ItemCounts is a per-side breakdown of migrated items by state.
type ItemCounts struct {
	Total  int `json:"total" yaml:"total"`
	Open   int `json:"open" yaml:"open"`
	Closed int `json:"closed" yaml:"closed"`
}

// LabelCounts summarizes label migration.
type LabelCounts struct {
	SourceTotal    int `json:"source_total" yaml:"source_total"`
	TargetExisting int `json:"target_existing" yaml:"target_existing"`
	TargetCreated  int `json:"target_created" yaml:"target_created"`
	Translated     int `json:"translated" yaml:"translated"`
}

// Statistics holds the counters collected during one migration run.
type Statistics struct {
	SourceIssues         ItemCounts  `json:"source_issues" yaml:"source_issues"`
	TargetIssues         ItemCounts  `json:"target_issues" yaml:"target_issues"`
	SourceMilestones     ItemCounts  `json:"source_milestones" yaml:"source_milestones"`
	TargetMilestones     ItemCounts  `json:"target_milestones" yaml:"target_milestones"`
	Labels               LabelCounts `json:"labels" yaml:"labels"`
	CommentsCreated      int         `json:"comments_created" yaml:"comments_created"`
	AttachmentsUploaded  int         `json:"attachments_uploaded" yaml:"attachments_uploaded"`
	AttachmentReferences int         `json:"attachment_references" yaml:"attachment_references"`
	RelationshipsCreated int         `json:"relationships_created" yaml:"relationships_created"`
}

// Report is the structured artifact produced by a migration run.
type Report struct {
	SourceProject string     `json:"source_project" yaml:"source_project"`
	TargetRepo    string     `json:"target_repo" yaml:"target_repo"`
	Success       bool       `json:"success" yaml:"success"`
	Errors        []string   `json:"errors" yaml:"errors"`
	Statistics    Statistics `json:"statistics" yaml:"statistics"`
}

// ToYAML serializes the report for the on-disk artifact.
func (r *Report) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, &SchemaError{
			Type:    "serialization_error",
			Message: "failed to serialize migration report to YAML",
			Err:     err,
		}
	}
	return data, nil
}

// WriteFile writes the YAML report artifact to the given path.
func (r *Report) WriteFile(path string) error {
	data, err := r.ToYAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &SchemaError{
			Type:    "file_error",
			Message: "failed to write migration report",
			Err:     err,
			Context: path,
		}
	}
	return nil
}
