package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/haitham-ghaida/lcamigrate/internal/domain"
	"github.com/haitham-ghaida/lcamigrate/internal/migrate"
	"github.com/haitham-ghaida/lcamigrate/internal/project"
	"github.com/haitham-ghaida/lcamigrate/internal/store"
)

var diffCmd = &cobra.Command{
	Use:   "diff <code>",
	Short: "Show field differences between an old record and its match",
	Long: `Resolves one old-database activity against the new database and prints
a unified diff of the descriptive fields. Useful for checking what a
match actually changed between database versions.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

var (
	diffOldProject string
	diffNewProject string
	diffOldDB      string
	diffNewDB      string
)

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffOldProject, "old-project", "", "Project holding the old database")
	diffCmd.Flags().StringVar(&diffNewProject, "new-project", "", "Project holding the new database")
	diffCmd.Flags().StringVar(&diffOldDB, "old-db", "", "Old database name")
	diffCmd.Flags().StringVar(&diffNewDB, "new-db", "", "New database name")
	diffCmd.MarkFlagRequired("old-project")
	diffCmd.MarkFlagRequired("new-project")
	diffCmd.MarkFlagRequired("old-db")
	diffCmd.MarkFlagRequired("new-db")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := migrate.New(migrate.Options{
		DataDir:           cfg.DataDir,
		OldProject:        diffOldProject,
		NewProject:        diffNewProject,
		OldDatabase:       diffOldDB,
		NewDatabase:       diffNewDB,
		BiosphereDatabase: cfg.BiosphereDatabase,
		SimilarityCutoff:  cfg.SimilarityCutoff,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	code := args[0]
	res, err := m.MigrateActivity(code, migrate.MigrateOptions{})
	if err != nil {
		return err
	}
	if !res.Resolved() {
		return fmt.Errorf("activity %q has no match in the new database", code)
	}

	oldDB, err := project.Open(cfg.DataDir, diffOldProject)
	if err != nil {
		return err
	}
	defer oldDB.Close()
	newDB, err := project.Open(cfg.DataDir, diffNewProject)
	if err != nil {
		return err
	}
	defer newDB.Close()

	oldAct, err := store.New(oldDB).Activities.GetByCode(res.Old.Database, res.Old.Code)
	if err != nil {
		return err
	}
	newAct, err := store.New(newDB).Activities.GetByCode(res.New.Database, res.New.Code)
	if err != nil {
		return err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(describeActivity(oldAct)),
		B:        difflib.SplitLines(describeActivity(newAct)),
		FromFile: res.Old.String(),
		ToFile:   res.New.String(),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("failed to compute diff: %w", err)
	}
	if text == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No field differences.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

// describeActivity renders the descriptive fields one per line so the
// unified diff reads field by field.
func describeActivity(act *domain.Activity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", act.Name)
	fmt.Fprintf(&b, "kind: %s\n", act.Kind)
	if act.Location != nil {
		fmt.Fprintf(&b, "location: %s\n", *act.Location)
	}
	if act.Unit != nil {
		fmt.Fprintf(&b, "unit: %s\n", *act.Unit)
	}
	if act.ReferenceProduct != nil {
		fmt.Fprintf(&b, "reference product: %s\n", *act.ReferenceProduct)
	}
	if len(act.Categories) > 0 {
		fmt.Fprintf(&b, "categories: %s\n", strings.Join(act.Categories, " / "))
	}
	return b.String()
}
