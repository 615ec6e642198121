package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values persist across executions in one process: arrays
	// accumulate and bools keep their last parse.
	initDBs = nil
	migrateCreate = false
	migrateByKey = false
	migrateJSON = false
	cleanupDryRun = false
	versionJSON = false
	exportOut = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

const oldProcesses = `database: ei38
activities:
  - code: A001
    name: steel production
    location: GLO
    unit: kg
    reference_product: steel
    exchanges:
      - input: biosphere3:F1
        amount: 1.85
        unit: kg
        type: biosphere
`

const oldFlows = `database: biosphere3
activities:
  - code: F1
    name: Carbon dioxide
    kind: biosphere
    unit: kg
    categories: [air]
`

const newFlows = `database: biosphere3
activities:
  - code: G1
    name: Carbon dioxide
    kind: biosphere
    unit: kg
    categories: [air]
`

func TestWorkflow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	workDir := t.TempDir()

	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v1", "--db", "ei38", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v1 failed: %v", err)
	}
	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v2", "--db", "ei39", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v2 failed: %v", err)
	}
	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v1"); err == nil {
		t.Fatal("expected error re-initializing v1")
	}

	oldProc := writeFile(t, workDir, "old-processes.yaml", oldProcesses)
	oldBio := writeFile(t, workDir, "old-flows.yaml", oldFlows)
	newBio := writeFile(t, workDir, "new-flows.yaml", newFlows)

	out, err := runCLI(t, "import", "--data-dir", dataDir, "--project", "v1", oldProc, oldBio)
	if err != nil {
		t.Fatalf("import v1 failed: %v\n%s", err, out)
	}
	if _, err := runCLI(t, "import", "--data-dir", dataDir, "--project", "v2", newBio); err != nil {
		t.Fatalf("import v2 failed: %v", err)
	}

	migrateArgs := []string{
		"migrate", "--data-dir", dataDir,
		"--old-project", "v1", "--new-project", "v2",
		"--old-db", "ei38", "--new-db", "ei39",
	}

	out, err = runCLI(t, append(migrateArgs, "A001")...)
	if err != nil {
		t.Fatalf("migrate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "unresolved") {
		t.Fatalf("expected unresolved without --create, got:\n%s", out)
	}

	out, err = runCLI(t, append(migrateArgs, "--create", "A001")...)
	if err != nil {
		t.Fatalf("migrate --create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created") {
		t.Fatalf("expected created outcome, got:\n%s", out)
	}

	// The old record now has an identity match in the new database.
	out, err = runCLI(t, "diff", "--data-dir", dataDir,
		"--old-project", "v1", "--new-project", "v2",
		"--old-db", "ei38", "--new-db", "ei39", "A001")
	if err != nil {
		t.Fatalf("diff failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No field differences.") {
		t.Fatalf("expected a clean diff, got:\n%s", out)
	}

	out, err = runCLI(t, "status", "--data-dir", dataDir, "--project", "v2")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ei39: 1 activities (1 auto-generated)") {
		t.Fatalf("unexpected status output:\n%s", out)
	}

	out, err = runCLI(t, "cleanup", "--data-dir", dataDir, "--project", "v2", "--db", "ei39", "--dry-run")
	if err != nil {
		t.Fatalf("cleanup --dry-run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Would delete 1") {
		t.Fatalf("unexpected dry-run output:\n%s", out)
	}

	out, err = runCLI(t, "cleanup", "--data-dir", dataDir, "--project", "v2", "--db", "ei39")
	if err != nil {
		t.Fatalf("cleanup failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Deleted 1") {
		t.Fatalf("unexpected cleanup output:\n%s", out)
	}

	out, err = runCLI(t, "export", "--data-dir", dataDir, "--project", "v2", "--db", "biosphere3")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Carbon dioxide") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
}

func TestMigrate_OldSideMissingFailsCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()

	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v1", "--db", "ei38", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v1 failed: %v", err)
	}
	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v2", "--db", "ei39", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v2 failed: %v", err)
	}

	out, err := runCLI(t, "migrate", "--data-dir", dataDir,
		"--old-project", "v1", "--new-project", "v2",
		"--old-db", "ei38", "--new-db", "ei39", "ghost")
	if err == nil {
		t.Fatalf("expected failure for missing identifier, got:\n%s", out)
	}
	if !strings.Contains(out, "error") {
		t.Fatalf("expected per-identifier error row, got:\n%s", out)
	}
}

func TestMigrate_ConfiguredJSONOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	workDir := t.TempDir()

	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v1", "--db", "ei38", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v1 failed: %v", err)
	}
	if _, err := runCLI(t, "init", "--data-dir", dataDir, "--project", "v2", "--db", "ei39", "--db", "biosphere3"); err != nil {
		t.Fatalf("init v2 failed: %v", err)
	}
	oldProc := writeFile(t, workDir, "old-processes.yaml", oldProcesses)
	oldBio := writeFile(t, workDir, "old-flows.yaml", oldFlows)
	if _, err := runCLI(t, "import", "--data-dir", dataDir, "--project", "v1", oldProc, oldBio); err != nil {
		t.Fatalf("import v1 failed: %v", err)
	}

	t.Setenv("LCAMIGRATE_OUTPUT", "json")

	out, err := runCLI(t, "migrate", "--data-dir", dataDir,
		"--old-project", "v1", "--new-project", "v2",
		"--old-db", "ei38", "--new-db", "ei39", "A001")
	if err != nil {
		t.Fatalf("migrate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"outcome": "unresolved"`) {
		t.Fatalf("expected JSON output without --json, got:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "lcamigrate version") {
		t.Fatalf("unexpected version output:\n%s", out)
	}
}
