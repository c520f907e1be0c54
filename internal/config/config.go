package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/dedupe/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Threshold     float64  `yaml:"threshold"`
	IDColumn      string   `yaml:"id_column"`
	NameColumn    string   `yaml:"name_column"`
	FKColumn      string   `yaml:"fk_column"`
	MissingTokens []string `yaml:"missing_tokens"`
	Workers       int      `yaml:"workers"`
	LogLevel      string   `yaml:"log_level"`
	DedupSuffix   string   `yaml:"dedup_suffix"`
	UpdateSuffix  string   `yaml:"update_suffix"`
	ArtifactDB    string   `yaml:"artifact_db"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Threshold:     0.85,
		IDColumn:      "id",
		NameColumn:    "name",
		FKColumn:      "company_id",
		MissingTokens: []string{"unknown", "none", "nan"},
		LogLevel:      "info",
		DedupSuffix:   "_deduplicated",
		UpdateSuffix:  "_updated",
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. the YAML file at path, or ~/.config/dedupe/config.yaml when path is empty
// 4. built-in defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if path != "" {
		// An explicit config file must exist
		if err := loadYAMLFile(cfg, path); err != nil {
			return nil, domain.ConfigErrorf("failed to load config %s: %w", path, err)
		}
	} else if defaultPath := userConfigPath(); defaultPath != "" {
		if _, err := os.Stat(defaultPath); err == nil {
			if err := loadYAMLFile(cfg, defaultPath); err != nil {
				return nil, domain.ConfigErrorf("failed to load config %s: %w", defaultPath, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DEDUPE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return domain.ConfigErrorf("invalid DEDUPE_THRESHOLD %q: %w", v, err)
		}
		cfg.Threshold = f
	}
	if v := os.Getenv("DEDUPE_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return domain.ConfigErrorf("invalid DEDUPE_WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("DEDUPE_ID_COLUMN"); v != "" {
		cfg.IDColumn = v
	}
	if v := os.Getenv("DEDUPE_NAME_COLUMN"); v != "" {
		cfg.NameColumn = v
	}
	if v := os.Getenv("DEDUPE_FK_COLUMN"); v != "" {
		cfg.FKColumn = v
	}
	if v := os.Getenv("DEDUPE_MISSING_TOKENS"); v != "" {
		cfg.MissingTokens = splitList(v)
	}
	if v := os.Getenv("DEDUPE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnvOrFile("DEDUPE_ARTIFACT_DB", "DEDUPE_ARTIFACT_DB_FILE"); v != "" {
		cfg.ArtifactDB = v
	}
	return nil
}

// Validate checks the configuration for values no run can use
func (c *Config) Validate() error {
	if err := domain.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	if err := domain.ValidateColumnName("id column", c.IDColumn); err != nil {
		return err
	}
	if err := domain.ValidateColumnName("name column", c.NameColumn); err != nil {
		return err
	}
	if err := domain.ValidateColumnName("foreign key column", c.FKColumn); err != nil {
		return err
	}
	if c.IDColumn == c.NameColumn {
		return domain.ConfigErrorf("id column and name column must differ (both %q)", c.IDColumn)
	}
	if c.Workers < 0 {
		return domain.ConfigErrorf("invalid workers %d: must not be negative", c.Workers)
	}
	if c.DedupSuffix == "" || c.UpdateSuffix == "" {
		return domain.ConfigErrorf("output suffixes cannot be empty")
	}
	return domain.ValidateLogLevel(c.LogLevel)
}

// loadYAMLFile merges the YAML file at path into cfg
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// userConfigPath returns ~/.config/dedupe/config.yaml, or "" without a home directory
func userConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "dedupe", "config.yaml")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}

// String summarizes the effective settings for debug logging
func (c *Config) String() string {
	return fmt.Sprintf("threshold=%g id=%q name=%q fk=%q workers=%d missing=%v",
		c.Threshold, c.IDColumn, c.NameColumn, c.FKColumn, c.Workers, c.MissingTokens)
}
