package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/logging"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete GitHub repositories matching a name prefix",
	Long: `Delete repositories owned by the authenticated user whose names match a
prefix. Intended for cleaning up repositories left over from migration test
runs; the prefix is required so nothing can be deleted by accident.`,
	Example: `  # Show what would be deleted
  gitlab-to-github cleanup --prefix test-migration- --dry-run

  # Actually delete
  gitlab-to-github cleanup --prefix test-migration-`,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if prefix == "" {
		return fmt.Errorf("--prefix is required")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	// A throwaway target against a dummy repo gives us the authenticated
	// client for listing; deletions go through per-repo targets.
	lister, err := target.NewGitHubTarget(cfg, "placeholder/placeholder", logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	repos, err := lister.ListOwnedRepositories()
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	var matched []string
	for _, fullName := range repos {
		parts := strings.SplitN(fullName, "/", 2)
		if len(parts) == 2 && strings.HasPrefix(parts[1], prefix) {
			matched = append(matched, fullName)
		}
	}

	if len(matched) == 0 {
		fmt.Printf("No repositories match prefix %q\n", prefix)
		return nil
	}

	for _, fullName := range matched {
		if dryRun {
			fmt.Printf("Would delete %s\n", fullName)
			continue
		}

		tgt, err := target.NewGitHubTarget(cfg, fullName, logger)
		if err != nil {
			return err
		}
		if err := tgt.DeleteRepository(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", fullName, err)
		}
		fmt.Printf("🗑️  Deleted %s\n", fullName)
	}

	if dryRun {
		fmt.Printf("%d repositories would be deleted\n", len(matched))
	} else {
		fmt.Printf("Deleted %d repositories\n", len(matched))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().String("prefix", "", "Repository name prefix to match (required)")
	cleanupCmd.Flags().Bool("dry-run", false, "List matching repositories without deleting")
}
