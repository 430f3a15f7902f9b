package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "okchat",
	Short: "Permission-aware knowledge base retrieval service",
	Long: `okchat retrieves knowledge-base documents for a chat assistant and
returns only the subset each requesting user is authorized to see.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
