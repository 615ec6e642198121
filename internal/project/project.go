// Package project resolves project names to SQLite files under a data
// directory. Each project is one self-contained file.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/haitham-ghaida/lcamigrate/internal/db"
	"github.com/haitham-ghaida/lcamigrate/internal/domain"
)

// FileName is the name of the SQLite file inside a project directory.
const FileName = "lca.db"

// Path returns the path of a project's database file.
func Path(dataDir, name string) string {
	return filepath.Join(dataDir, name, FileName)
}

// Exists reports whether a project exists under the data directory.
func Exists(dataDir, name string) bool {
	_, err := os.Stat(Path(dataDir, name))
	return err == nil
}

// Open opens an existing project. A missing project is a configuration
// error, not something to create silently.
func Open(dataDir, name string) (*db.DB, error) {
	if name == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	if !Exists(dataDir, name) {
		return nil, &domain.ConfigError{Kind: "project", Name: name}
	}

	database, err := db.Open(Path(dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open project %q: %w", name, err)
	}
	if err := database.RequiresMigrationError(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Create initializes a new project file and applies the schema.
// Creating a project that already exists is an error.
func Create(dataDir, name string) (*db.DB, error) {
	if name == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	if Exists(dataDir, name) {
		return nil, fmt.Errorf("project %q already exists", name)
	}

	database, err := db.Open(Path(dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", name, err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize project %q: %w", name, err)
	}
	return database, nil
}

// List returns the names of all projects under the data directory.
func List(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && Exists(dataDir, entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
