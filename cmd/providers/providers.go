// Package providers provides the providers parent command and subcommands.
package providers

import (
	"github.com/leefowlercu/novel-narrator/cmd/providers/subcommands"
	"github.com/spf13/cobra"
)

// ProvidersCmd is the parent command for all provider-related subcommands.
var ProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the AI providers used by each stage",
	Long: "Inspect the AI providers used by each stage.\n\n" +
		"Providers are the services that translate text, extract scenes, generate " +
		"images, and synthesize speech. This command lists which providers serve each " +
		"capability and tests their connectivity.",
}

func init() {
	// Register subcommands
	ProvidersCmd.AddCommand(subcommands.ListCmd)
	ProvidersCmd.AddCommand(subcommands.TestCmd)
}
