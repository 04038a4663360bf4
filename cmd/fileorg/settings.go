package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/llm"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage application settings",
	}

	cmd.AddCommand(showSettingsCmd())
	cmd.AddCommand(setSettingCmd())
	cmd.AddCommand(testLLMCmd())

	return cmd
}

func showSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openConfigStore()
			if err != nil {
				return err
			}

			settings, err := store.LoadSettings()
			if err != nil {
				return err
			}

			apiKey := "(not set)"
			if settings.LLM.Config.APIKey != "" {
				apiKey = "(set)"
			}

			fmt.Println(cli.FormatTitle("Settings"))
			fmt.Printf("  llm.enabled:         %v\n", settings.LLM.Enabled)
			fmt.Printf("  llm.provider:        %s\n", settings.LLM.Config.Provider)
			fmt.Printf("  llm.api_endpoint:    %s\n", settings.LLM.Config.APIEndpoint)
			fmt.Printf("  llm.model:           %s\n", settings.LLM.Config.Model)
			fmt.Printf("  llm.api_key:         %s\n", apiKey)
			fmt.Printf("  llm.supports_vision: %v\n", settings.LLM.Config.SupportsVision)

			return nil
		},
	}
}

func setSettingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one setting",
		Long: `Update one setting and persist it. Supported keys: llm.enabled,
llm.provider, llm.api_key, llm.api_endpoint, llm.model, llm.supports_vision.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := openConfigStore()
			if err != nil {
				return err
			}

			settings, err := store.LoadSettings()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			switch key {
			case "llm.enabled":
				enabled, parseErr := strconv.ParseBool(value)
				if parseErr != nil {
					return fmt.Errorf("invalid boolean %q: %w", value, parseErr)
				}
				settings.LLM.Enabled = enabled
			case "llm.provider":
				settings.LLM.Config.Provider = value
			case "llm.api_key":
				settings.LLM.Config.APIKey = value
			case "llm.api_endpoint":
				settings.LLM.Config.APIEndpoint = value
			case "llm.model":
				settings.LLM.Config.Model = value
			case "llm.supports_vision":
				vision, parseErr := strconv.ParseBool(value)
				if parseErr != nil {
					return fmt.Errorf("invalid boolean %q: %w", value, parseErr)
				}
				settings.LLM.Config.SupportsVision = vision
			default:
				return fmt.Errorf("unknown setting: %s", key)
			}

			if err := store.SaveSettings(settings); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s updated", key)))
			return nil
		},
	}
}

func testLLMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-llm",
		Short: "Test the configured LLM connection",
		Long:  `Send a probe classification to the configured provider and report the result.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openConfigStore()
			if err != nil {
				return err
			}

			settings, err := store.LoadSettings()
			if err != nil {
				return err
			}

			classifier, err := llm.NewClassifier(classifierConfig(settings), promptTemplates(settings), nil)
			if err != nil {
				return err
			}
			defer func() { _ = classifier.Close() }()

			message, err := classifier.Ping(ctx)
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(message))
			return nil
		},
	}
}
