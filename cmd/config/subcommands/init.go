package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/config"
)

var (
	initForce bool
	initPath  string
)

// InitCmd writes a configuration file holding the defaults.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: "Write a default configuration file.\n\n" +
		"Creates config.yaml with every setting at its default value so it can be " +
		"edited by hand. API keys are left empty; by default they are read from " +
		"OPENAI_API_KEY and GOOGLE_API_KEY. An existing file is kept unless --force is given.",
	Example: `  # Create ~/.config/narrator/config.yaml
  narrator config init

  # Create a project-local configuration
  narrator config init --path ./config.yaml`,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	InitCmd.Flags().StringVar(&initPath, "path", "", "Where to write the file (default ~/.config/narrator/config.yaml)")
}

func validateInit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if config.ConfigExistsAt(path) && !initForce {
		return fmt.Errorf("configuration file already exists at %s; use --force to overwrite", path)
	}

	if err := config.Write(config.LoadWithDefaults(), path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", config.ExpandPath(path))
	return nil
}
