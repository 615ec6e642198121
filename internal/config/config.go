package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DataDir           string  `yaml:"data_dir"`
	SimilarityCutoff  float64 `yaml:"similarity_cutoff"`
	BiosphereDatabase string  `yaml:"biosphere_database"`
	Output            string  `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/lcamigrate/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		SimilarityCutoff:  0.70,
		BiosphereDatabase: "biosphere3",
		Output:            "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional; ignore a missing file
	_ = loadYAMLConfig(cfg)

	if dataDir := os.Getenv("LCAMIGRATE_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cutoff := os.Getenv("LCAMIGRATE_SIMILARITY_CUTOFF"); cutoff != "" {
		v, err := strconv.ParseFloat(cutoff, 64)
		if err != nil || v <= 0 || v > 1 {
			return nil, fmt.Errorf("invalid LCAMIGRATE_SIMILARITY_CUTOFF %q: expected a number in (0,1]", cutoff)
		}
		cfg.SimilarityCutoff = v
	}
	if biosphere := os.Getenv("LCAMIGRATE_BIOSPHERE_DB"); biosphere != "" {
		cfg.BiosphereDatabase = biosphere
	}
	if output := os.Getenv("LCAMIGRATE_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if cfg.Output != "table" && cfg.Output != "json" {
		return nil, fmt.Errorf("invalid output format %q: expected table or json", cfg.Output)
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".local", "share", "lcamigrate")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/lcamigrate/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "lcamigrate", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		if dir == homeDir {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
