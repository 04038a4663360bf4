// Package config persists application settings and the user-editable
// category set as JSON files under the user config directory. Engine calls
// receive the loaded values as immutable snapshots; nothing here is shared
// mutable state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/rules"
)

// Settings is the persisted application configuration.
type Settings struct {
	Theme    string         `json:"theme"`
	Language string         `json:"language"`
	LLM      LLMSettings    `json:"llm"`
	Prompts  PromptSettings `json:"prompts"`
}

// LLMSettings gates and configures the semantic classification path.
type LLMSettings struct {
	Config  ProviderConfig `json:"config"`
	Enabled bool           `json:"enabled"`
}

// ProviderConfig identifies the external model endpoint.
type ProviderConfig struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key"`
	APIEndpoint    string `json:"api_endpoint"`
	Model          string `json:"model"`
	SupportsVision bool   `json:"supports_vision"`
}

// PromptSettings holds the user-editable prompt templates.
type PromptSettings struct {
	FilenamePrompt    string `json:"filename_prompt"`
	TextContentPrompt string `json:"text_content_prompt"`
	ImagePrompt       string `json:"image_prompt"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Theme:    "system",
		Language: "en-US",
		LLM: LLMSettings{
			Enabled: false,
			Config: ProviderConfig{
				Provider:       "openai",
				APIEndpoint:    "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				SupportsVision: true,
			},
		},
	}
}

// Dir returns the application config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "fileorg"), nil
}

// DataDir returns the directory for the history database and backup area.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "fileorg"), nil
}

// Store reads and writes the settings and category files in one directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadSettings returns the persisted settings, or defaults when no file
// exists yet.
func (s *Store) LoadSettings() (Settings, error) {
	path := filepath.Join(s.dir, "settings.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes the settings file, creating the directory as needed.
func (s *Store) SaveSettings(settings Settings) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	path := filepath.Join(s.dir, "settings.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// LoadCategories returns the persisted category set, or the built-in
// defaults when no file exists yet. The returned slice is a fresh snapshot
// on every call.
func (s *Store) LoadCategories() ([]model.Category, error) {
	path := filepath.Join(s.dir, "categories.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultCategories(), nil
		}
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	var categories []model.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return categories, nil
}

// SaveCategories validates and writes the category file, creating the
// directory as needed. A category set containing an invalid rule is rejected
// rather than persisted.
func (s *Store) SaveCategories(categories []model.Category) error {
	if err := rules.ValidateCategories(categories); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	path := filepath.Join(s.dir, "categories.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	return nil
}
