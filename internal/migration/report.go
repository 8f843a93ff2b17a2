package migration

import (
	"fmt"
	"io"
	"strings"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// PrintReport writes the validation report in a human-readable layout
func PrintReport(w io.Writer, report *schema.Report) {
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "MIGRATION VALIDATION REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "GitLab Project:    %s\n", report.SourceProject)
	fmt.Fprintf(w, "GitHub Repository: %s\n", report.TargetRepo)
	fmt.Fprintln(w)

	if report.Success {
		fmt.Fprintln(w, "✓ Validation Status: PASSED")
	} else {
		fmt.Fprintln(w, "✗ Validation Status: FAILED")
	}
	fmt.Fprintln(w)

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "ERRORS:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  • %s\n", e)
		}
		fmt.Fprintln(w)
	}

	stats := &report.Statistics
	fmt.Fprintln(w, "MIGRATION STATISTICS:")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Issues:")
	printItemCounts(w, "GitLab", stats.SourceIssues)
	printItemCounts(w, "GitHub", stats.TargetIssues)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Milestones:")
	printItemCounts(w, "GitLab", stats.SourceMilestones)
	printItemCounts(w, "GitHub", stats.TargetMilestones)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Labels:")
	fmt.Fprintf(w, "  GitLab:  Total=%d\n", stats.Labels.SourceTotal)
	fmt.Fprintf(w, "  GitHub:  Existing=%d, Created=%d, Translated=%d\n",
		stats.Labels.TargetExisting, stats.Labels.TargetCreated, stats.Labels.Translated)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Comments created:      %d\n", stats.CommentsCreated)
	fmt.Fprintf(w, "Attachments uploaded:  %d (of %d references)\n",
		stats.AttachmentsUploaded, stats.AttachmentReferences)
	fmt.Fprintf(w, "Relationships created: %d\n", stats.RelationshipsCreated)
	fmt.Fprintln(w)

	fmt.Fprintln(w, rule)
}

func printItemCounts(w io.Writer, system string, counts schema.ItemCounts) {
	fmt.Fprintf(w, "  %s:  Total=%d, Open=%d, Closed=%d\n",
		system, counts.Total, counts.Open, counts.Closed)
}
