package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the default config file location.
const EnvPath = "BONDVAULT_CONFIG"

// Config represents ~/.config/bondvault/config.toml.
type Config struct {
	DataDir        string `toml:"data_dir"`
	DBPath         string `toml:"db_path"`
	SecretsPath    string `toml:"secrets_path"`
	AttachmentsDir string `toml:"attachments_dir"`
	CalendarPath   string `toml:"calendar_path"`
	ExportDir      string `toml:"export_dir"`
	LogPath        string `toml:"log_path"`
	LogLevel       string `toml:"log_level"`
}

// DefaultDataDir returns the per-user bondvault directory.
func DefaultDataDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "bondvault"), nil
}

// Default returns a config with every path placed under dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "bondvault.db"),
		SecretsPath:    filepath.Join(dataDir, "secrets.json"),
		AttachmentsDir: filepath.Join(dataDir, "attachments"),
		CalendarPath:   filepath.Join(dataDir, "reminders.ics"),
		ExportDir:      filepath.Join(dataDir, "exports"),
		LogPath:        filepath.Join(dataDir, "bondvault.log"),
		LogLevel:       "info",
	}
}

// Path returns the config file location, honouring BONDVAULT_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from path on top of the defaults. A missing file is not
// an error. When the file changes data_dir, paths it leaves unset follow it.
func Load(path string) (*Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}

	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(dataDir), nil
		}
		return nil, err
	}

	if file.DataDir != "" {
		dataDir = file.DataDir
	}
	cfg := Default(dataDir)
	overlay(&cfg.DBPath, file.DBPath)
	overlay(&cfg.SecretsPath, file.SecretsPath)
	overlay(&cfg.AttachmentsDir, file.AttachmentsDir)
	overlay(&cfg.CalendarPath, file.CalendarPath)
	overlay(&cfg.ExportDir, file.ExportDir)
	overlay(&cfg.LogPath, file.LogPath)
	overlay(&cfg.LogLevel, file.LogLevel)
	return cfg, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
