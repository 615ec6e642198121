package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete auto-generated records from a database",
	Long: `Removes every record in the given database that was created by the
migrator (auto-generated marker set), along with its exchanges.
Hand-authored records are untouched.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var (
	cleanupProject string
	cleanupDB      string
	cleanupDryRun  bool
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupProject, "project", "", "Project name")
	cleanupCmd.Flags().StringVar(&cleanupDB, "db", "", "Database to clean up")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Only report what would be deleted")
	cleanupCmd.MarkFlagRequired("project")
	cleanupCmd.MarkFlagRequired("db")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := project.Open(cfg.DataDir, cleanupProject)
	if err != nil {
		return err
	}
	defer database.Close()

	s := store.New(database)
	if cleanupDryRun {
		count, err := s.Activities.CountAutoGenerated(cleanupDB)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Would delete %d auto-generated activities from %s\n", count, cleanupDB)
		return nil
	}

	deleted, err := s.Activities.DeleteAutoGenerated(cleanupDB)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d auto-generated activities from %s\n", deleted, cleanupDB)
	return nil
}
