package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/version"
)

// VersionCmd displays version and build information.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Long: "Display version and build information.\n\n" +
		"Shows the semantic version, git commit hash, and build date " +
		"of the current narrator binary. This information is useful " +
		"for troubleshooting and verifying the installed version.",
	Example: `  # Display version information
  narrator version

  # Single line, for scripts and bug reports
  narrator version --short`,
	PreRunE: validateVersion,
	RunE:    runVersion,
}

var versionShort bool

func init() {
	VersionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version and commit on one line")
}

func validateVersion(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	if versionShort {
		fmt.Fprintln(cmd.OutOrStdout(), info.Short())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.String())
	return nil
}
