package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ufilesorg/promptly/internal/config"
	"github.com/ufilesorg/promptly/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promptly",
	Short: "Prompt rendering and multi-provider LLM dispatch service",
	Long: `Promptly brokers LLM calls for client applications. It fetches
parameterized prompt templates from a remote CMS, fills in caller
variables, dispatches the rendered prompt to the selected provider,
normalizes the response to JSON and prices the token usage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for the init command itself
		if cmd.Name() == "init" {
			return nil
		}

		path := cfgFile
		if path == "" {
			if envPath := os.Getenv("PROMPTLY_CONFIG_PATH"); envPath != "" {
				path = envPath
			} else if config.Exists(config.GetConfigPath()) {
				path = config.GetConfigPath()
			}
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.Init(logger.ParseLevel(cfg.Log.Level), os.Stderr)

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.promptly/config.yaml)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(enginesCmd)
}
