package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/strrl/llmchat/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultHistoryLimit   = 20
	DefaultNarrowWidth    = 96 // 768px at 8px per terminal cell
	DefaultInputMaxHeight = 6

	// EnvAPIBaseURL overrides api_base_url from the config file
	EnvAPIBaseURL = "LLMCHAT_API_BASE_URL"
)

// Config holds everything the composition root needs to build the app
type Config struct {
	APIBaseURL     string           `yaml:"api_base_url"`
	StoragePath    string           `yaml:"storage_path"`
	LogFile        string           `yaml:"log_file"`
	HistoryLimit   int              `yaml:"history_limit"`
	NarrowWidth    int              `yaml:"narrow_width"`
	InputMaxHeight int              `yaml:"input_max_height"`
	Features       []models.Feature `yaml:"features"`
	Panels         []models.Panel   `yaml:"panels"`
}

// Default returns the built-in configuration rooted at dataDir
func Default(dataDir string) Config {
	return Config{
		APIBaseURL:     DefaultAPIBaseURL,
		StoragePath:    filepath.Join(dataDir, "storage.duckdb"),
		LogFile:        filepath.Join(dataDir, "llmchat.log"),
		HistoryLimit:   DefaultHistoryLimit,
		NarrowWidth:    DefaultNarrowWidth,
		InputMaxHeight: DefaultInputMaxHeight,
		Features: []models.Feature{
			{Key: "chat", Label: "Chat"},
			{Key: "voice", Label: "Speech to Text"},
			{Key: "ocr", Label: "Image OCR"},
			{Key: "weather", Label: "Weather"},
		},
		Panels: []models.Panel{
			{ID: models.ChatPanelID, Title: "Chat"},
			{ID: "voiceContainer", Title: "Speech to Text", Body: "Speech to text is not available in the terminal client."},
			{ID: "ocrContainer", Title: "Image OCR", Body: "Image OCR is not available in the terminal client."},
			{ID: "weatherContainer", Title: "Weather", Body: "Weather reports are not available in the terminal client."},
		},
	}
}

// DataDir returns the per-user directory for storage and logs
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".llmchat"), nil
}

// Load reads a YAML file on top of the defaults. Environment variables
// referenced as ${VAR} are expanded before parsing. A missing file at the
// default location is not an error; pass required=true for a user-given path.
func Load(path, dataDir string, required bool) (Config, error) {
	cfg := Default(dataDir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: api_base_url is required")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("config: history_limit must be positive, got %d", c.HistoryLimit)
	}
	if c.NarrowWidth < 0 {
		return fmt.Errorf("config: narrow_width must not be negative, got %d", c.NarrowWidth)
	}
	if c.InputMaxHeight <= 0 {
		return fmt.Errorf("config: input_max_height must be positive, got %d", c.InputMaxHeight)
	}
	if len(c.Features) == 0 {
		return fmt.Errorf("config: at least one feature is required")
	}

	keys := make(map[string]struct{}, len(c.Features))
	for _, f := range c.Features {
		if f.Key == "" {
			return fmt.Errorf("config: feature key is required")
		}
		if _, dup := keys[f.Key]; dup {
			return fmt.Errorf("config: duplicate feature key %q", f.Key)
		}
		keys[f.Key] = struct{}{}

		matches := 0
		for _, p := range c.Panels {
			if strings.Contains(strings.ToLower(p.ID), strings.ToLower(f.Key)) {
				matches++
			}
		}
		if matches > 1 {
			return fmt.Errorf("config: feature %q matches %d panels", f.Key, matches)
		}
	}

	return nil
}
