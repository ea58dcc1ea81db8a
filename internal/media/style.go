package media

import (
	"fmt"
	"strings"

	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// VisualStyle is the look applied to every generated image.
type VisualStyle struct {
	Mood         string
	TimePeriod   string
	ArtStyle     string
	ColorPalette string
	Environment  string
	Weather      string
	Lighting     string
}

// DefaultVisualStyle returns a dark early twentieth century horror look.
func DefaultVisualStyle() VisualStyle {
	return VisualStyle{
		Mood:         "dark and eerie",
		TimePeriod:   "the 1920s",
		ArtStyle:     "a gothic oil painting",
		ColorPalette: "muted green, grey and deep black",
		Environment:  "a fog-covered coastal town",
		Weather:      "a heavy storm sky",
		Lighting:     "dim, flickering lamplight",
	}
}

// ImagePrompt describes one scene for an image model.
func ImagePrompt(scene scenes.Scene, style VisualStyle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A %s scene set in %s. ", style.Mood, style.TimePeriod)
	fmt.Fprintf(&b, "The art style is %s, using %s colors. ", style.ArtStyle, style.ColorPalette)
	fmt.Fprintf(&b, "The environment is %s under %s. ", style.Environment, style.Weather)
	fmt.Fprintf(&b, "The setting is %s, featuring %s. ", scene.Location, strings.Join(scene.Characters, ", "))
	fmt.Fprintf(&b, "Key events happening in this scene: %s. ", strings.Join(scene.Events, ", "))
	fmt.Fprintf(&b, "The scene is illuminated by %s. ", style.Lighting)
	fmt.Fprintf(&b, "Scene description: %s.", scene.Summary)
	return b.String()
}
