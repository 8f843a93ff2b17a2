package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flaksit/gitlab-to-github-migrator/internal/migration"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/config"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/git"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/logging"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate <gitlab-project> <github-repo>",
	Short: "Migrate a GitLab project to a new GitHub repository",
	Long: `Migrate a complete GitLab project to a newly created GitHub repository.

The migration covers git content (all branches and tags), labels, milestones,
issues with comments and attachments, and issue relationships (sub-issues and
blocking dependencies). Issue and milestone numbers are preserved exactly:
GitLab issue #42 becomes GitHub issue #42.

The target repository must not exist yet - it is created by the migration and
deleted again if the migration fails partway. Number preservation only works
against a repository whose issue and milestone numbering has never been used.

Credentials are read from the environment (or a .env file):
  GITLAB_TOKEN     GitLab personal access token (optional for public projects)
  GITHUB_TOKEN     GitHub token with repo scope (required)
  GITLAB_BASE_URL  GitLab instance URL (default https://gitlab.com)`,
	Example: `  # Migrate a project, repository name under your own account
  gitlab-to-github migrate mygroup/myproject myuser/myproject

  # Translate label names during migration
  gitlab-to-github migrate mygroup/myproject myorg/myproject \
    --relabel "p_*:priority: *" --relabel "t_bug:bug"

  # Push git content from an existing local clone instead of re-cloning
  gitlab-to-github migrate mygroup/myproject myuser/myproject \
    --local-clone ./myproject

  # Metadata only, skip git content
  gitlab-to-github migrate mygroup/myproject myuser/myproject --skip-git`,
	Args: cobra.ExactArgs(2),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	gitlabProject := args[0]
	githubRepo := args[1]

	relabel, _ := cmd.Flags().GetStringArray("relabel")
	localClone, _ := cmd.Flags().GetString("local-clone")
	skipGit, _ := cmd.Flags().GetBool("skip-git")
	verbose, _ := cmd.Flags().GetBool("verbose")

	fmt.Println("📄 Loading configuration...")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	fmt.Printf("🦊 Connecting to GitLab (%s)...\n", cfg.GitLabBaseURL)
	src, err := source.NewGitLabSource(cfg, gitlabProject, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitLab client: %w", err)
	}

	fmt.Println("🐙 Connecting to GitHub...")
	tgt, err := target.NewGitHubTarget(cfg, githubRepo, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	mirror := git.NewGitMirror(cfg.GitLabToken, cfg.GitHubToken, logger)

	engine := migration.NewEngine(src, tgt, mirror, logger, migration.Options{
		LabelRules: relabel,
		LocalClone: localClone,
		SkipGit:    skipGit,
	})

	fmt.Printf("🚀 Migrating %s -> %s...\n", gitlabProject, githubRepo)
	report, err := engine.Run()
	if err != nil {
		return err
	}

	migration.PrintReport(os.Stdout, report)

	if reportFile, _ := cmd.Flags().GetString("report-file"); reportFile != "" {
		if err := report.WriteFile(reportFile); err != nil {
			return fmt.Errorf("failed to write report file: %w", err)
		}
		fmt.Printf("📝 Report written to %s\n", reportFile)
	}

	if !report.Success {
		return fmt.Errorf("migration completed with validation errors")
	}
	fmt.Println("✅ Migration completed successfully!")
	return nil
}

// loadConfig builds the configuration loader, honoring --env-file
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	var loader config.Provider
	if envFile != "" {
		loader = config.NewDotEnvLoader(envFile)
	} else {
		loader = config.NewDotEnvLoader()
	}
	return loader.Load()
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringArrayP("relabel", "r", nil,
		"Label translation pattern \"source:target\" (repeatable, * matches the rest of the name)")
	migrateCmd.Flags().String("local-clone", "",
		"Path to an existing local clone to push git content from")
	migrateCmd.Flags().Bool("skip-git", false,
		"Skip git content mirroring, migrate metadata only")
	migrateCmd.Flags().BoolP("verbose", "v", false,
		"Enable debug logging")
	migrateCmd.Flags().String("report-file", "",
		"Write the validation report as YAML to this path")
}
