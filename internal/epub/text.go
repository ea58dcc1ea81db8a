package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags start and end a paragraph.
var blockTags = map[string]bool{
	"p":          true,
	"div":        true,
	"section":    true,
	"article":    true,
	"blockquote": true,
	"pre":        true,
	"li":         true,
	"tr":         true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
}

// ExtractText renders chapter markup as plain text: one paragraph per block
// element, separated by blank lines, with inline whitespace collapsed.
// The returned title is the first heading, or the document title.
func ExtractText(content []byte) (string, string, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse chapter markup; %w", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, nav").Remove()

	title := strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	title = strings.Join(strings.Fields(title), " ")

	body := doc.Find("body")
	if body.Length() == 0 {
		return title, "", nil
	}

	w := &paragraphWriter{}
	for _, n := range body.Nodes {
		w.walk(n)
	}
	w.flush()

	return title, strings.Join(w.paragraphs, "\n\n"), nil
}

type paragraphWriter struct {
	buf        strings.Builder
	paragraphs []string
}

func (w *paragraphWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.buf.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "br" {
			w.buf.WriteByte(' ')
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		w.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.flush()
	}
}

func (w *paragraphWriter) flush() {
	text := strings.Join(strings.Fields(w.buf.String()), " ")
	w.buf.Reset()
	if text != "" {
		w.paragraphs = append(w.paragraphs, text)
	}
}
