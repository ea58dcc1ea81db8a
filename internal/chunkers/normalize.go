package chunkers

import (
	"regexp"
	"strings"
)

// Matches one or more consecutive line feeds.
var lineFeedRun = regexp.MustCompile(`\n+`)

var lineBreakReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts every line-break sequence to a line feed and collapses runs of
// line feeds into exactly one blank line, so paragraphs are always separated by "\n\n".
// Normalizing already-normalized text returns it unchanged.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = lineBreakReplacer.Replace(text)
	return lineFeedRun.ReplaceAllString(text, "\n\n")
}
