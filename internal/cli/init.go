package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project and optionally register databases in it",
	Long: `Creates a new project file under the data directory. With --db,
also registers one or more LCA database names in the project.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initProject string
	initDBs     []string
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name")
	initCmd.Flags().StringArrayVar(&initDBs, "db", nil, "Database name to register (repeatable)")
	initCmd.MarkFlagRequired("project")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := project.Create(cfg.DataDir, initProject)
	if err != nil {
		return err
	}
	defer database.Close()

	s := store.New(database)
	for _, name := range initDBs {
		if err := s.Activities.EnsureDatabase(name); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s at %s\n", initProject, database.Path())
	for _, name := range initDBs {
		fmt.Fprintf(cmd.OutOrStdout(), "Registered database %s\n", name)
	}
	return nil
}
