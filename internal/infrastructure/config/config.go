package config

import (
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"worktrack/internal/util"
)

// Database holds embedded database configuration.
type Database struct {
	Path string `envconfig:"WORKTRACK_DB_PATH"`
}

// CLI holds configuration for the command line surface.
type CLI struct {
	Database Database
	PageSize int `envconfig:"WORKTRACK_PAGE_SIZE" default:"20"`
}

// LoadCLI loads CLI configuration from environment variables. When no
// database path is set it falls back to the XDG data directory.
func LoadCLI() (*CLI, error) {
	var cfg CLI
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		dataDir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = filepath.Join(dataDir, "worktrack.db")
	}

	return &cfg, nil
}

// DataDir returns the directory holding the database file, used for log
// placement as well.
func (c *CLI) DataDir() string {
	return filepath.Dir(c.Database.Path)
}
