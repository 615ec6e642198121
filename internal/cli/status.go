package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/db"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a project's databases and schema status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusProject string

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusProject, "project", "", "Project name")
	statusCmd.MarkFlagRequired("project")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Open the file directly so pending schema migrations are reported
	// instead of refused.
	if !project.Exists(cfg.DataDir, statusProject) {
		return fmt.Errorf("project %q does not exist", statusProject)
	}
	database, err := db.Open(project.Path(cfg.DataDir, statusProject))
	if err != nil {
		return err
	}
	defer database.Close()

	applied, pending, err := database.MigrationStatus()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project: %s (%s)\n", statusProject, database.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Schema: %d applied, %d pending\n", len(applied), len(pending))
	if len(pending) > 0 {
		return nil
	}

	s := store.New(database)
	names, err := s.Activities.ListDatabases()
	if err != nil {
		return err
	}
	for _, name := range names {
		var activities int
		if err := database.QueryRow("SELECT COUNT(*) FROM activities WHERE database = ?", name).Scan(&activities); err != nil {
			return fmt.Errorf("failed to count activities in %s: %w", name, err)
		}
		generated, err := s.Activities.CountAutoGenerated(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d activities (%d auto-generated)\n", name, activities, generated)
	}
	return nil
}
