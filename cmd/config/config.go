// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage narrator configuration",
	Long: "Manage narrator configuration.\n\n" +
		"The config command allows you to view, edit, and reset the narrator " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/narrator/config.yaml by default.",
}

func init() {
	// Register subcommands
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.EditCmd)
	ConfigCmd.AddCommand(subcommands.ResetCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
