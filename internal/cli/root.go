package cli

import (
	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "lcamigrate",
	Short: "Migrate LCA activities between database versions",
	Long: `lcamigrate copies activity records and their exchanges from one
version of an LCA database to another, matching old records to new
ones by code, identity, or fuzzy name comparison, and creating
missing records on request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory holding project files (overrides LCAMIGRATE_DATA_DIR)")
}

// loadConfig loads configuration and applies the --data-dir override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir := cmd.Flag("data-dir").Value.String(); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}
