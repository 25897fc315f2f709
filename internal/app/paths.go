package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "nutritiontracker"
	dbFileName     = "tracker.db"
	configFileName = "config.toml"
	envFileName    = ".env"
	backupDirName  = "backups"
)

func DefaultDBPath() (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

func DefaultConfigPath() (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultEnvPath is the dotenv file read before the config, relative to the working directory.
func DefaultEnvPath() string {
	return envFileName
}

// DefaultBackupDir places backups next to the SQLite file they copy.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), backupDirName)
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

func baseDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}
