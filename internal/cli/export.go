package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/inventory"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a database from a project as YAML inventory",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportProject string
	exportDB      string
	exportOut     string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportProject, "project", "", "Source project name")
	exportCmd.Flags().StringVar(&exportDB, "db", "", "Database to export")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.MarkFlagRequired("project")
	exportCmd.MarkFlagRequired("db")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := project.Open(cfg.DataDir, exportProject)
	if err != nil {
		return err
	}
	defer database.Close()

	doc, err := inventory.Export(store.New(database).Activities, exportDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return inventory.Write(out, doc)
}
