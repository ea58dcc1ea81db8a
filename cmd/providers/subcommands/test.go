package subcommands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

var (
	testCapability string
	testTimeout    time.Duration
)

const testSentence = "The lighthouse keeper climbed the stairs as the storm began."

// TestCmd tests connectivity to an AI provider.
var TestCmd = &cobra.Command{
	Use:   "test <provider-name>",
	Short: "Test connectivity to an AI provider",
	Long: "Test connectivity to an AI provider.\n\n" +
		"Verifies that the specified provider is properly configured and can " +
		"communicate with its API. This sends a minimal request for one capability " +
		"to confirm authentication and connectivity. Image generation is only tested " +
		"when requested with --capability image since it is the most expensive call.",
	Example: `  # Test OpenAI translation
  narrator providers test openai

  # Test Google Translate speech synthesis
  narrator providers test gtts --capability speech`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateTest,
	RunE:    runTest,
}

func init() {
	TestCmd.Flags().StringVarP(&testCapability, "capability", "c", "",
		"Capability to test (translate, scenes, image, speech; default the cheapest one supported)")
	TestCmd.Flags().DurationVar(&testTimeout, "timeout", 30*time.Second, "Request timeout")
}

func validateTest(cmd *cobra.Command, args []string) error {
	switch providers.Capability(testCapability) {
	case "", providers.CapabilityTranslate, providers.CapabilityScenes, providers.CapabilityImage, providers.CapabilitySpeech:
	default:
		return fmt.Errorf("unknown capability %q", testCapability)
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	providerName := args[0]

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	registry, closers, err := pipeline.NewProviderRegistry(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer closeAll(closers)

	capability, err := pickCapability(registry, providerName, providers.Capability(testCapability))
	if err != nil {
		return err
	}

	p, err := lookup(registry, capability, providerName)
	if err != nil {
		return fmt.Errorf("provider %q does not support %s", providerName, capability)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing %s provider: %s\n", capability, p.Name())

	if !p.Available() {
		return fmt.Errorf("provider %s is not available (missing API key or configuration)", p.Name())
	}

	fmt.Fprintln(out, "  Status: available")
	fmt.Fprintln(out, "  Sending test request...")

	ctx, cancel := context.WithTimeout(cmd.Context(), testTimeout)
	defer cancel()

	start := time.Now()
	detail, err := probe(ctx, registry, capability, providerName)
	duration := time.Since(start)

	if err != nil {
		return fmt.Errorf("test failed; %w", err)
	}

	fmt.Fprintf(out, "  Response received in %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  %s\n", detail)
	fmt.Fprintln(out, "  Test: PASSED")

	return nil
}

// pickCapability returns requested when set, otherwise the first capability the
// provider supports other than image generation.
func pickCapability(registry *providers.Registry, name string, requested providers.Capability) (providers.Capability, error) {
	if requested != "" {
		return requested, nil
	}
	for _, c := range []providers.Capability{providers.CapabilityTranslate, providers.CapabilitySpeech, providers.CapabilityScenes} {
		if _, err := lookup(registry, c, name); err == nil {
			return c, nil
		}
	}
	if _, err := lookup(registry, providers.CapabilityImage, name); err == nil {
		return "", fmt.Errorf("provider %q only generates images; pass --capability image to test it", name)
	}
	return "", fmt.Errorf("provider %q not found", name)
}

// probe sends one small request for capability and describes the answer.
func probe(ctx context.Context, registry *providers.Registry, capability providers.Capability, name string) (string, error) {
	switch capability {
	case providers.CapabilityTranslate:
		t, err := registry.Translator(name)
		if err != nil {
			return "", err
		}
		result, err := t.Translate(ctx, providers.TranslateRequest{
			Text:           testSentence,
			TargetLanguage: config.GetString("translate.target_language"),
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Translation: %s", truncate(result.Text, 80)), nil
	case providers.CapabilityScenes:
		e, err := registry.SceneExtractor(name)
		if err != nil {
			return "", err
		}
		prompt, err := scenes.Prompt(testSentence)
		if err != nil {
			return "", err
		}
		result, err := e.ExtractScenes(ctx, providers.SceneRequest{Prompt: prompt})
		if err != nil {
			return "", err
		}
		list, err := scenes.Parse(result.Content)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Scenes: %d (%d tokens)", len(list), result.TokensUsed), nil
	case providers.CapabilityImage:
		g, err := registry.ImageGenerator(name)
		if err != nil {
			return "", err
		}
		result, err := g.GenerateImage(ctx, providers.ImageRequest{
			Prompt: testSentence,
			Size:   config.GetString("images.size"),
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Image: %d bytes", len(result.Data)), nil
	case providers.CapabilitySpeech:
		sp, err := registry.SpeechSynthesizer(name)
		if err != nil {
			return "", err
		}
		result, err := sp.Synthesize(ctx, providers.SpeechRequest{
			Text:     testSentence,
			Language: config.GetString("speech.language"),
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Audio: %d bytes of %s", len(result.Audio), result.Format), nil
	default:
		return "", fmt.Errorf("unknown capability %q", capability)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
