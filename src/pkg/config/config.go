// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"powertree/local-app/src/pkg/model"
)

// DefaultConfigPath is used when no config file is given on the command line.
const DefaultConfigPath = "./data/config.json"

// Global variables to store the current configuration and its file path.
var (
	currentConfig *model.Config
	configPath    = DefaultConfigPath
	validate      = validator.New()
)

// ConfigDefault returns the configuration written on first run.
func ConfigDefault() *model.Config {
	return &model.Config{
		DatabaseType:   "sqlite",
		DatabaseDir:    "./data",
		DatabaseFile:   "powertree.db",
		LogFolder:      "./logs",
		CommandLog:     "commands.log",
		ErrorLog:       "errors.log",
		InfoLog:        "info.log",
		LogLevel:       "info",
		HistoryFile:    "./data/history.txt",
		CacheSlot:      "treeData",
		HistoryLimit:   100,
		RootName:       "Root",
		RootColor:      "#ffffff",
		ExportFormat:   "json",
		SessionTimeout: 30,
		UseColor:       true,
	}
}

// ConfigLoad loads the configuration from path, or from the default
// location when path is empty. JSON and YAML files are accepted.
// If the file doesn't exist, it creates a default configuration.
func ConfigLoad(path string) error {
	if path != "" {
		configPath = path
	}

	// Ensure the data directory exists
	dataDir := filepath.Dir(configPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Check if the config file exists, if not create a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		defaultConfig := ConfigDefault()
		if err := ConfigSave(defaultConfig); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		currentConfig = defaultConfig
		return nil
	}

	// Read and parse the existing config file
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// Missing keys keep their default values
	cfg := ConfigDefault()
	if isYAML(configPath) {
		err = yaml.Unmarshal(file, cfg)
	} else {
		err = json.Unmarshal(file, cfg)
	}
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ConfigValidate(cfg); err != nil {
		return err
	}

	currentConfig = cfg
	return nil
}

// ConfigValidate checks the configuration against its field constraints.
func ConfigValidate(cfg *model.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a host:port address", e.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
	}
}

// ConfigSave saves the provided configuration to the config file.
func ConfigSave(cfg *model.Config) error {
	var data []byte
	var err error
	if isYAML(configPath) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// ConfigGet returns the current configuration.
func ConfigGet() *model.Config {
	return currentConfig
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
