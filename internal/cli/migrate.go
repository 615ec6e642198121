package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <code>...",
	Short: "Resolve old-database activities against a new database",
	Long: `Looks each identifier up in the old project's database and resolves it
against the new one: exact code first, then composite identity, then
fuzzy name matching for biosphere flows. With --create, unmatched
records are copied into the new database along with their exchanges,
carrying the auto-generated marker.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMigrate,
}

var (
	migrateOldProject string
	migrateNewProject string
	migrateOldDB      string
	migrateNewDB      string
	migrateCreate     bool
	migrateByKey      bool
	migrateJSON       bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateOldProject, "old-project", "", "Project holding the old database")
	migrateCmd.Flags().StringVar(&migrateNewProject, "new-project", "", "Project holding the new database")
	migrateCmd.Flags().StringVar(&migrateOldDB, "old-db", "", "Old database name")
	migrateCmd.Flags().StringVar(&migrateNewDB, "new-db", "", "New database name")
	migrateCmd.Flags().BoolVar(&migrateCreate, "create", false, "Create records that have no match in the new database")
	migrateCmd.Flags().BoolVar(&migrateByKey, "by-key", false, "Treat identifiers as database:code keys")
	migrateCmd.Flags().BoolVar(&migrateJSON, "json", false, "Output as JSON (overrides the configured output format)")
	migrateCmd.MarkFlagRequired("old-project")
	migrateCmd.MarkFlagRequired("new-project")
	migrateCmd.MarkFlagRequired("old-db")
	migrateCmd.MarkFlagRequired("new-db")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := migrate.New(migrate.Options{
		DataDir:           cfg.DataDir,
		OldProject:        migrateOldProject,
		NewProject:        migrateNewProject,
		OldDatabase:       migrateOldDB,
		NewDatabase:       migrateNewDB,
		BiosphereDatabase: cfg.BiosphereDatabase,
		SimilarityCutoff:  cfg.SimilarityCutoff,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	type row struct {
		Identifier string `json:"identifier"`
		Outcome    string `json:"outcome"`
		New        string `json:"new,omitempty"`
		Error      string `json:"error,omitempty"`
	}

	var rows []row
	failed := 0
	for _, identifier := range args {
		res, err := m.MigrateActivity(identifier, migrate.MigrateOptions{
			CreateIfNotFound: migrateCreate,
			ByKey:            migrateByKey,
		})
		if err != nil {
			var notFound *domain.NotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
			rows = append(rows, row{Identifier: identifier, Outcome: "error", Error: err.Error()})
			failed++
			continue
		}

		r := row{Identifier: identifier, Outcome: string(res.Outcome)}
		if res.New != nil {
			r.New = res.New.String()
		}
		rows = append(rows, r)
	}

	if migrateJSON || cfg.Output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(rows); err != nil {
			return err
		}
	} else {
		for _, r := range rows {
			switch {
			case r.Error != "":
				fmt.Fprintf(cmd.OutOrStdout(), "%s\terror\t%s\n", r.Identifier, r.Error)
			case r.New != "":
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Identifier, r.Outcome, r.New)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Identifier, r.Outcome)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d identifiers failed to resolve on the old side", failed, len(args))
	}
	return nil
}
