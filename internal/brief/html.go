package brief

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var multiBlankPattern = regexp.MustCompile(`\n{3,}`)

// extractText strips an HTML document down to its visible text. Script,
// style and head content is dropped; block elements introduce line breaks.
// A parse failure falls back to the raw input.
func extractText(src []byte) string {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return string(src)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head", "iframe":
				return
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "section", "article":
				sb.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(multiBlankPattern.ReplaceAllString(sb.String(), "\n\n"))
}
