package backend

import (
	"fmt"

	"github.com/Charan170903/expense-tracker/internal/config"
)

// BackendType identifies which data layer a deployment runs against.
type BackendType string

const (
	BackendMemory BackendType = "memory"
	BackendSheets BackendType = "sheets"
	BackendSQLite BackendType = "sqlite"
)

// Config holds the subset of application configuration the factory
// needs to construct a backend.
type Config struct {
	Type            BackendType
	SQLiteDBPath    string
	AnchorStorePath string
	SeedDir         string
}

// FromAppConfig maps application configuration to a backend config.
func FromAppConfig(appConfig *config.Config) *Config {
	return &Config{
		Type:            BackendType(appConfig.DataBackend),
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		AnchorStorePath: appConfig.AnchorStorePath,
		SeedDir:         ".",
	}
}

func (c *Config) Validate() error {
	switch c.Type {
	case BackendMemory:
		if c.AnchorStorePath == "" {
			return fmt.Errorf("memory backend requires an anchor store path")
		}
	case BackendSheets:
		if c.AnchorStorePath == "" {
			return fmt.Errorf("sheets backend requires an anchor store path")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	default:
		return fmt.Errorf("unknown backend type: %s", c.Type)
	}
	return nil
}
