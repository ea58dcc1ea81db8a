package subcommands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

var (
	listVerbose bool
)

// capabilities in pipeline order, with the config key selecting each one's provider.
var capabilities = []struct {
	capability providers.Capability
	title      string
	configKey  string
}{
	{providers.CapabilityTranslate, "Translation", "translate.provider"},
	{providers.CapabilityScenes, "Scene Extraction", "segment.provider"},
	{providers.CapabilityImage, "Image Generation", "images.provider"},
	{providers.CapabilitySpeech, "Speech Synthesis", "speech.provider"},
}

// ListCmd lists available AI providers.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available AI providers",
	Long: "List available AI providers.\n\n" +
		"Displays the providers registered for each capability and marks the one " +
		"selected by the configuration. Use --verbose to see models and rate limits.",
	Example: `  # List all providers
  narrator providers list

  # List with detailed information
  narrator providers list --verbose`,
	PreRunE: validateList,
	RunE:    runList,
}

func init() {
	ListCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show detailed provider information")
}

func validateList(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	registry, closers, err := pipeline.NewProviderRegistry(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer closeAll(closers)

	printRegistry(cmd.OutOrStdout(), registry, listVerbose)
	return nil
}

func printRegistry(out io.Writer, registry *providers.Registry, verbose bool) {
	for i, c := range capabilities {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s Providers:\n", c.title)

		names := registry.List(c.capability)
		if len(names) == 0 {
			fmt.Fprintln(out, "  (none registered)")
			continue
		}

		selected := config.GetString(c.configKey)
		for _, name := range names {
			p, err := lookup(registry, c.capability, name)
			if err != nil {
				continue
			}
			printProvider(out, p, name == selected, verbose)
		}
	}
}

func printProvider(out io.Writer, p providers.Provider, selected, verbose bool) {
	status := "unavailable"
	if p.Available() {
		status = "available"
	}

	marker := " "
	if selected {
		marker = "*"
	}

	if !verbose {
		fmt.Fprintf(out, " %s %s (%s)\n", marker, p.Name(), status)
		return
	}

	fmt.Fprintf(out, " %s %s:\n", marker, p.Name())
	fmt.Fprintf(out, "    Status: %s\n", status)
	if m, ok := p.(interface{ ModelName() string }); ok {
		fmt.Fprintf(out, "    Model: %s\n", m.ModelName())
	}
	rateLimit := p.RateLimit()
	var limits []string
	if rateLimit.RequestsPerMinute > 0 {
		limits = append(limits, fmt.Sprintf("%d req/min", rateLimit.RequestsPerMinute))
	}
	if rateLimit.MinInterval > 0 {
		limits = append(limits, fmt.Sprintf("%v between calls", rateLimit.MinInterval))
	}
	if len(limits) == 0 {
		limits = append(limits, "none")
	}
	fmt.Fprintf(out, "    Rate Limit: %s\n", strings.Join(limits, ", "))
}

// lookup returns the provider registered for a capability.
func lookup(registry *providers.Registry, c providers.Capability, name string) (providers.Provider, error) {
	switch c {
	case providers.CapabilityTranslate:
		return registry.Translator(name)
	case providers.CapabilityScenes:
		return registry.SceneExtractor(name)
	case providers.CapabilityImage:
		return registry.ImageGenerator(name)
	case providers.CapabilitySpeech:
		return registry.SpeechSynthesizer(name)
	default:
		return nil, providers.ErrProviderNotFound
	}
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
