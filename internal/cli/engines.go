package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ufilesorg/promptly/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the supported engines with their prices",
	RunE:  runEngines,
}

func runEngines(cmd *cobra.Command, args []string) error {
	fmt.Println(FormatHeader("Supported Engines"))
	fmt.Println(FormatHeader("================="))
	fmt.Println()

	for _, name := range engine.Names() {
		profile, err := engine.Resolve(name)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", FormatLabel("Engine:"), FormatValue(profile.Name))
		fmt.Printf("%s %s\n", FormatLabel("Family:"), string(profile.Family))
		fmt.Printf("%s %s\n", FormatLabel("Base URL:"), FormatMeta(profile.BaseURL))
		fmt.Printf("%s %s%.5f%s / %s%.5f%s coins per 1k tokens (in/out)\n",
			FormatLabel("Price:"),
			PriceStyle, profile.InputPrice, Reset,
			PriceStyle, profile.OutputPrice, Reset)
		if profile.ImagePrice > 0 {
			fmt.Printf("%s %s%.7f%s coins per image\n",
				FormatLabel("Image:"), PriceStyle, profile.ImagePrice, Reset)
		}
		fmt.Println()
	}

	return nil
}
