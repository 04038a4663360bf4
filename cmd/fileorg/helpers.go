package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fileorg/fileorg/internal/config"
	"github.com/fileorg/fileorg/internal/engine"
	"github.com/fileorg/fileorg/internal/llm"
	"github.com/fileorg/fileorg/internal/rules"
	"github.com/fileorg/fileorg/internal/storage"
)

// openConfigStore resolves the config directory, honoring the
// config_dir override from the config file or FILEORG_CONFIG_DIR.
func openConfigStore() (*config.Store, error) {
	dir := viper.GetString("config_dir")
	if dir == "" {
		var err error
		dir, err = config.Dir()
		if err != nil {
			return nil, err
		}
	}
	return config.NewStore(dir), nil
}

// openHistory opens the history store with auto-migration.
func openHistory(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dataDir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dataDir, "fileorg.db")
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate history store: %w", err)
	}

	return store, nil
}

// buildEngine assembles the classification engine from persisted settings.
// The returned closer releases classifier resources and may be nil.
func buildEngine(settings config.Settings) (*engine.ClassificationEngine, func(), error) {
	matcher := rules.NewMatcher(nil)

	engineCfg := engine.DefaultConfig()
	engineCfg.LLMEnabled = settings.LLM.Enabled
	if n := viper.GetInt("llm.max_concurrent"); n > 0 {
		engineCfg.MaxConcurrentLLMCalls = n
	}

	if !settings.LLM.Enabled {
		return engine.New(matcher, nil, engineCfg, nil), func() {}, nil
	}

	classifier, err := llm.NewClassifier(classifierConfig(settings), promptTemplates(settings), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM classifier: %w", err)
	}

	return engine.New(matcher, classifier, engineCfg, nil), func() { _ = classifier.Close() }, nil
}

func classifierConfig(settings config.Settings) llm.Config {
	return llm.Config{
		Provider:       settings.LLM.Config.Provider,
		APIKey:         settings.LLM.Config.APIKey,
		APIEndpoint:    settings.LLM.Config.APIEndpoint,
		Model:          settings.LLM.Config.Model,
		SupportsVision: settings.LLM.Config.SupportsVision,
		RateLimit:      viper.GetInt("llm.rate_limit"),
	}
}

func promptTemplates(settings config.Settings) llm.PromptTemplates {
	templates := llm.DefaultPromptTemplates()
	if settings.Prompts.FilenamePrompt != "" {
		templates.Filename = settings.Prompts.FilenamePrompt
	}
	if settings.Prompts.TextContentPrompt != "" {
		templates.TextContent = settings.Prompts.TextContentPrompt
	}
	if settings.Prompts.ImagePrompt != "" {
		templates.Image = settings.Prompts.ImagePrompt
	}
	return templates
}
