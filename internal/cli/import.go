package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/inventory"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>...",
	Short: "Import YAML inventory files into a project",
	Long: `Loads one or more YAML inventory documents into a project, registering
each document's database and inserting its activities and exchanges.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var importProject string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importProject, "project", "", "Target project name")
	importCmd.MarkFlagRequired("project")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := project.Open(cfg.DataDir, importProject)
	if err != nil {
		return err
	}
	defer database.Close()

	s := store.New(database)
	for _, path := range args {
		doc, err := inventory.ReadFile(path)
		if err != nil {
			return err
		}
		result, err := inventory.Import(s.Activities, doc)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d activities, %d exchanges into %s\n",
			path, result.Activities, result.Exchanges, doc.Database)
	}
	return nil
}
