package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ufilesorg/promptly/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a configuration file with defaults. Engine credentials and the
Strapi token are never written to the file; they are read from the
environment (or a .env file) at startup:

  STRAPI_URL           Template store base URL
  STRAPI_TOKEN         Template store bearer token
  METIS_API_KEY        Vendor proxy credential (OpenAI, Gemini, Grok)
  PERPLEXITY_API_KEY   Perplexity credential
  METIS_BOT_ID         Legacy bot id`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}

	if config.Exists(path) && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}

	fmt.Printf("Wrote default configuration to %s\n", path)
	fmt.Println("Edit strapi.url (or set STRAPI_URL) before starting the server.")
	return nil
}
