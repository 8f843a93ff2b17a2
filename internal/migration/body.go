package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// formatTimestamp renders a timestamp as "2024-01-15 10:30:45Z". A nil
// timestamp renders as an empty string.
func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05") + "Z"
}

// buildIssueBody assembles the target issue body: a provenance header, the
// processed description, and the cross-links section for relationships that
// have no structured equivalent on the target.
func buildIssueBody(issue *schema.Issue, processedDescription, crossLinks string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Migrated from GitLab issue #%d**\n", issue.Number)
	fmt.Fprintf(&b, "**Original Author:** %s (@%s)\n", issue.Author.Name, issue.Author.Username)
	fmt.Fprintf(&b, "**Created:** %s\n", formatTimestamp(issue.CreatedAt))
	fmt.Fprintf(&b, "**GitLab URL:** %s\n\n", issue.WebURL)
	b.WriteString("---\n\n")
	b.WriteString(processedDescription)
	b.WriteString(crossLinks)
	return b.String()
}

// buildCommentBody assembles a target comment. System notes get a short
// marker; human comments get an attribution header followed by the processed
// body.
func buildCommentBody(comment *schema.Comment, processedBody string) string {
	if comment.System {
		return fmt.Sprintf("**System note:** %s\n\n", comment.Body)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Comment by** %s (@%s) **on** %s\n\n",
		comment.Author.Name, comment.Author.Username, formatTimestamp(comment.CreatedAt))
	b.WriteString("---\n\n")
	b.WriteString(processedBody)
	return b.String()
}

// crossLinksText renders the relationships that stay as markdown: "related"
// links and cross-project blocking links. Same-project blocking links and
// parent/child links are excluded, they become structured relationships in
// the linking pass. Same-project references use plain #N since the numbers
// are preserved; external references keep their full source URL.
func crossLinksText(issueLinks []schema.IssueLink) string {
	var lines []string

	for _, link := range issueLinks {
		var relationship string
		switch link.Kind {
		case schema.LinkKindBlocks:
			if link.SameProject {
				continue
			}
			relationship = "Blocks"
		case schema.LinkKindIsBlockedBy:
			if link.SameProject {
				continue
			}
			relationship = "Blocked by"
		case schema.LinkKindRelatesTo:
			relationship = "Related to"
		default:
			relationship = fmt.Sprintf("Linked (%s)", link.Kind)
		}

		if link.SameProject {
			lines = append(lines, fmt.Sprintf("- **%s**: #%d - %s",
				relationship, link.TargetNumber, link.TargetTitle))
		} else {
			lines = append(lines, fmt.Sprintf("- **%s**: [%s#%d](%s) - %s",
				relationship, link.TargetProject, link.TargetNumber, link.TargetWebURL, link.TargetTitle))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return "\n\n---\n\n**Cross-linked Issues:**\n\n" + strings.Join(lines, "\n") + "\n"
}
