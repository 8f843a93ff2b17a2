// Package migration orchestrates a full GitLab to GitHub migration run:
// repository creation, git content mirroring, labels, milestones, issues
// with comments and attachments, relationship linking, and a final
// validation report.
package migration

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/attachments"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/git"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/labels"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/links"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/numbering"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

const (
	placeholderIssueTitle = "Placeholder"
	placeholderIssueBody  = "Placeholder to preserve issue numbering - will be deleted"
	// placeholderLabel marks placeholder issues that could not be deleted,
	// so cleanup and validation can identify them without parsing titles
	placeholderLabel = "migration-placeholder"

	placeholderMilestoneTitle = "Placeholder Milestone"
)

// Options control one migration run
type Options struct {
	// LabelRules are "source:target" label translation patterns
	LabelRules []string
	// LocalClone names an existing local clone to mirror from instead of
	// cloning the source over the network
	LocalClone string
	// SkipGit skips git content mirroring entirely
	SkipGit bool
}

// Engine executes one migration run. Construct a fresh Engine per run; the
// attachment cache and collected relationship data are scoped to it.
type Engine struct {
	source  source.System
	target  target.System
	mirror  git.Mirror
	handler *attachments.Handler
	creator *numbering.Creator
	logger  logr.Logger
	opts    Options
}

// NewEngine wires an engine from its collaborators
func NewEngine(src source.System, tgt target.System, mirror git.Mirror, logger logr.Logger, opts Options) *Engine {
	return &Engine{
		source:  src,
		target:  tgt,
		mirror:  mirror,
		handler: attachments.NewHandler(src, tgt, logger),
		creator: numbering.NewCreator(logger),
		logger:  logger,
		opts:    opts,
	}
}

// Run executes the migration and returns the validation report. Any failure
// after the target repository has been created triggers a best-effort
// deletion of that repository, so no half-migrated artifact is left behind.
func (e *Engine) Run() (*schema.Report, error) {
	translator, err := labels.NewTranslator(e.opts.LabelRules)
	if err != nil {
		return nil, &MigrationError{Message: "invalid label translation pattern", Err: err}
	}

	// Pre-flight: all validation happens before any mutation
	if err := e.source.ValidateAccess(); err != nil {
		return nil, &MigrationError{Message: "source access validation failed", Err: err}
	}
	if err := e.target.ValidateAccess(); err != nil {
		return nil, &MigrationError{Message: "target access validation failed", Err: err}
	}

	exists, err := e.target.RepositoryExists()
	if err != nil {
		return nil, &MigrationError{Message: "failed to check target repository", Err: err}
	}
	if exists {
		return nil, &MigrationError{
			Message: fmt.Sprintf("target repository %s already exists", e.target.RepoFullName()),
		}
	}

	project, err := e.source.GetProject()
	if err != nil {
		return nil, &MigrationError{Message: "failed to read source project", Err: err}
	}

	if err := e.target.CreateRepository(project.Description, true); err != nil {
		return nil, &MigrationError{Message: "failed to create target repository", Err: err}
	}

	report, err := e.runPhases(project, translator)
	if err != nil {
		e.cleanupRepository()
		return nil, err
	}

	e.logger.Info("migration completed",
		"source", e.source.ProjectPath(), "target", e.target.RepoFullName(), "success", report.Success)
	return report, nil
}

// runPhases performs every mutation phase plus validation. The target
// repository exists when this is called; the caller deletes it on error.
func (e *Engine) runPhases(project *schema.Project, translator *labels.Translator) (*schema.Report, error) {
	if !e.opts.SkipGit {
		if err := e.mirror.MirrorRepository(project.CloneURL, e.target.CloneURL(), e.opts.LocalClone); err != nil {
			return nil, &MigrationError{Message: "git content mirroring failed", Err: err}
		}
	} else {
		e.logger.Info("skipping git content mirroring")
	}

	labelResult, err := labels.Migrate(e.source, e.target, translator, e.logger)
	if err != nil {
		return nil, &MigrationError{Message: "label migration failed", Err: err}
	}

	milestones, err := e.migrateMilestones()
	if err != nil {
		return nil, &MigrationError{Message: "milestone migration failed", Err: err}
	}

	issues, issueState, err := e.migrateIssues(labelResult.Mapping)
	if err != nil {
		return nil, &MigrationError{Message: "issue migration failed", Err: err}
	}

	linkResult, err := e.migrateRelationships(issueState)
	if err != nil {
		return nil, &MigrationError{Message: "relationship linking failed", Err: err}
	}

	report := e.validate(milestones, issues, labelResult, issueState, linkResult)
	return report, nil
}

// migrateMilestones creates all source milestones at their original numbers
// and returns the source milestones for validation
func (e *Engine) migrateMilestones() ([]schema.Milestone, error) {
	milestones, err := e.source.GetMilestones()
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		e.logger.Info("no milestones to migrate")
		return nil, nil
	}

	ops := &milestoneOps{target: e.target, milestones: make(map[int]*schema.Milestone)}
	numbers := make([]int, 0, len(milestones))
	for i := range milestones {
		ops.milestones[milestones[i].Number] = &milestones[i]
		numbers = append(numbers, milestones[i].Number)
	}

	result, err := e.creator.Run(ops, numbers)
	if err != nil {
		return nil, err
	}

	e.logger.Info("migrated milestones", "count", result.Created, "placeholders", result.Placeholders)
	return milestones, nil
}

type milestoneOps struct {
	target     target.System
	milestones map[int]*schema.Milestone
}

func (o *milestoneOps) Kind() string { return "milestone" }

func (o *milestoneOps) Create(number int) (int, error) {
	return o.target.CreateMilestone(*o.milestones[number])
}

func (o *milestoneOps) CreatePlaceholder() (int, error) {
	return o.target.CreateMilestone(schema.Milestone{
		Title:       placeholderMilestoneTitle,
		Description: "Placeholder to preserve milestone numbering",
		State:       "closed",
	})
}

func (o *milestoneOps) DiscardPlaceholder(number int) error {
	return o.target.DeleteMilestone(number)
}

// issueRunState carries everything the issue pass produces that later phases
// need: collected relationships, the set of migrated numbers, and counters.
type issueRunState struct {
	relations       []links.IssueRelations
	migrated        map[int]bool
	commentsCreated int
	// leftClosed are placeholder numbers that could not be deleted and
	// remain closed, carrying the marker label
	leftClosed []int
}

// migrateIssues creates all source issues at their original numbers and
// returns the source issues plus the pass state
func (e *Engine) migrateIssues(labelMapping map[string]string) ([]schema.Issue, *issueRunState, error) {
	issues, err := e.source.GetIssues()
	if err != nil {
		return nil, nil, err
	}

	state := &issueRunState{migrated: make(map[int]bool)}
	if len(issues) == 0 {
		e.logger.Info("no issues to migrate")
		return nil, state, nil
	}

	ops := &issueOps{
		engine:       e,
		labelMapping: labelMapping,
		issues:       make(map[int]*schema.Issue),
		placeholders: make(map[int]*target.IssueHandle),
		state:        state,
	}
	numbers := make([]int, 0, len(issues))
	for i := range issues {
		ops.issues[issues[i].Number] = &issues[i]
		numbers = append(numbers, issues[i].Number)
	}

	result, err := e.creator.Run(ops, numbers)
	if err != nil {
		return nil, nil, err
	}

	e.logger.Info("migrated issues",
		"count", result.Created, "placeholders", result.Placeholders,
		"comments", state.commentsCreated)
	return issues, state, nil
}

type issueOps struct {
	engine       *Engine
	labelMapping map[string]string
	issues       map[int]*schema.Issue
	placeholders map[int]*target.IssueHandle
	state        *issueRunState

	markerLabelReady bool
}

func (o *issueOps) Kind() string { return "issue" }

func (o *issueOps) Create(number int) (int, error) {
	e := o.engine
	issue := o.issues[number]

	processed := ""
	if issue.Body != "" {
		var err error
		processed, err = e.handler.Process(issue.Body)
		if err != nil {
			return 0, err
		}
	}

	// Relationship data is collected now and replayed after all issues
	// exist at their final numbers
	children, err := e.source.GetChildren(number)
	if err != nil {
		e.logger.Info("failed to read child work items, continuing without hierarchy",
			"issue", number, "error", err.Error())
		children = nil
	}
	issueLinks, err := e.source.GetLinks(number)
	if err != nil {
		return 0, err
	}

	body := buildIssueBody(issue, processed, crossLinksText(issueLinks))

	var issueLabels []string
	for _, name := range issue.Labels {
		if mapped, found := o.labelMapping[name]; found {
			issueLabels = append(issueLabels, mapped)
		}
	}

	// Milestone numbers are preserved the same way issue numbers are, so
	// the source reference carries over directly
	handle, err := e.target.CreateIssue(issue.Title, body, issueLabels, issue.MilestoneNumber)
	if err != nil {
		return 0, err
	}

	if err := o.migrateComments(number, handle.Number); err != nil {
		return 0, err
	}

	if issue.State == "closed" {
		if err := e.target.CloseIssue(handle.Number); err != nil {
			return 0, err
		}
	}

	if len(children) > 0 || len(issueLinks) > 0 {
		o.state.relations = append(o.state.relations, links.IssueRelations{
			Number:   number,
			Children: children,
			Links:    issueLinks,
		})
	}
	o.state.migrated[handle.Number] = true

	e.logger.V(1).Info("created issue", "number", handle.Number, "title", issue.Title)
	return handle.Number, nil
}

// migrateComments copies one issue's comments in chronological order.
// A failed comment creation is logged and skipped; a failed attachment
// relocation aborts, since the content would silently lose files.
func (o *issueOps) migrateComments(sourceNumber, targetNumber int) error {
	e := o.engine

	comments, err := e.source.GetComments(sourceNumber)
	if err != nil {
		e.logger.Info("failed to read comments, continuing without them",
			"issue", sourceNumber, "error", err.Error())
		return nil
	}

	for i := range comments {
		comment := &comments[i]

		processedBody := comment.Body
		if !comment.System && comment.Body != "" {
			processedBody, err = e.handler.Process(comment.Body)
			if err != nil {
				return err
			}
		}

		if err := e.target.CreateComment(targetNumber, buildCommentBody(comment, processedBody)); err != nil {
			e.logger.Info("failed to create comment, skipping",
				"issue", targetNumber, "error", err.Error())
			continue
		}
		o.state.commentsCreated++
	}

	return nil
}

func (o *issueOps) CreatePlaceholder() (int, error) {
	e := o.engine

	if !o.markerLabelReady {
		// Best effort: the label may already exist from a previous run
		if err := e.target.CreateLabel(schema.Label{
			Name:        placeholderLabel,
			Color:       "ededed",
			Description: "Numbering placeholder left over from migration",
		}); err != nil {
			e.logger.V(1).Info("placeholder label creation failed", "error", err.Error())
		}
		o.markerLabelReady = true
	}

	handle, err := e.target.CreateIssue(
		placeholderIssueTitle, placeholderIssueBody, []string{placeholderLabel}, 0)
	if err != nil {
		return 0, err
	}

	// Placeholders are inert from the moment they exist
	if err := e.target.CloseIssue(handle.Number); err != nil {
		return 0, err
	}

	o.placeholders[handle.Number] = handle
	return handle.Number, nil
}

func (o *issueOps) DiscardPlaceholder(number int) error {
	e := o.engine

	deleted, err := e.target.DeleteIssue(o.placeholders[number])
	if err != nil {
		return err
	}
	if !deleted {
		// The target forbids issue deletion for this token or plan. The
		// placeholder stays closed and labeled, excluded from validation.
		e.logger.Info("placeholder issue cannot be deleted, leaving closed", "number", number)
		o.state.leftClosed = append(o.state.leftClosed, number)
	}
	return nil
}

// migrateRelationships runs the linking pass over collected relationship data
func (e *Engine) migrateRelationships(state *issueRunState) (*links.Result, error) {
	if len(state.relations) == 0 {
		return &links.Result{}, nil
	}
	linker := links.NewLinker(e.target, e.logger)
	return linker.Apply(state.relations, state.migrated)
}

// validate compares source and target counts and assembles the report.
// Mismatches do not fail the run - the content already exists - but they
// flip the report's success flag for the operator to inspect.
func (e *Engine) validate(
	sourceMilestones []schema.Milestone,
	sourceIssues []schema.Issue,
	labelResult *labels.Result,
	issueState *issueRunState,
	linkResult *links.Result,
) *schema.Report {
	report := &schema.Report{
		SourceProject: e.source.ProjectPath(),
		TargetRepo:    e.target.RepoFullName(),
		Success:       true,
	}
	stats := &report.Statistics

	stats.SourceIssues = countIssues(sourceIssues)
	stats.SourceMilestones = countMilestones(sourceMilestones)
	stats.Labels = schema.LabelCounts{
		SourceTotal:    len(labelResult.Mapping),
		TargetExisting: labelResult.Existing,
		TargetCreated:  labelResult.Created,
		Translated:     labelResult.Translated(),
	}
	stats.CommentsCreated = issueState.commentsCreated
	stats.AttachmentsUploaded = e.handler.Uploaded()
	stats.AttachmentReferences = e.handler.Referenced()
	stats.RelationshipsCreated = linkResult.Total()

	targetIssues, err := e.target.ListIssues()
	if err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("validation failed: %v", err))
		return report
	}
	targetIssues = excludePlaceholderIssues(targetIssues)
	stats.TargetIssues = countIssues(targetIssues)

	targetMilestones, err := e.target.ListMilestones()
	if err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("validation failed: %v", err))
		return report
	}
	targetMilestones = excludePlaceholderMilestones(targetMilestones)
	stats.TargetMilestones = countMilestones(targetMilestones)

	if stats.SourceIssues.Total != stats.TargetIssues.Total {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf(
			"issue count mismatch: source %d, target %d",
			stats.SourceIssues.Total, stats.TargetIssues.Total))
	}
	if stats.SourceMilestones.Total != stats.TargetMilestones.Total {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf(
			"milestone count mismatch: source %d, target %d",
			stats.SourceMilestones.Total, stats.TargetMilestones.Total))
	}

	return report
}

// cleanupRepository deletes the just-created target repository after a
// failed run. Failures here are only logged.
func (e *Engine) cleanupRepository() {
	e.logger.Info("cleaning up created repository after failure", "repo", e.target.RepoFullName())
	if err := e.target.DeleteRepository(); err != nil {
		e.logger.Error(err, "failed to clean up target repository", "repo", e.target.RepoFullName())
	}
}

func countIssues(issues []schema.Issue) schema.ItemCounts {
	counts := schema.ItemCounts{Total: len(issues)}
	for _, issue := range issues {
		if issue.State == "open" {
			counts.Open++
		} else {
			counts.Closed++
		}
	}
	return counts
}

func countMilestones(milestones []schema.Milestone) schema.ItemCounts {
	counts := schema.ItemCounts{Total: len(milestones)}
	for _, m := range milestones {
		if m.State == "open" {
			counts.Open++
		} else {
			counts.Closed++
		}
	}
	return counts
}

func excludePlaceholderIssues(issues []schema.Issue) []schema.Issue {
	var kept []schema.Issue
	for _, issue := range issues {
		if issue.Title == placeholderIssueTitle && hasLabel(issue.Labels, placeholderLabel) {
			continue
		}
		kept = append(kept, issue)
	}
	return kept
}

func excludePlaceholderMilestones(milestones []schema.Milestone) []schema.Milestone {
	var kept []schema.Milestone
	for _, m := range milestones {
		if m.Title == placeholderMilestoneTitle {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func hasLabel(labelNames []string, name string) bool {
	for _, l := range labelNames {
		if l == name {
			return true
		}
	}
	return false
}
