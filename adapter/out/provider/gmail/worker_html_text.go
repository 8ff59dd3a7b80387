package gmail

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end the current line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"table": true, "ul": true, "ol": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "footer": true, "blockquote": true, "hr": true,
}

// skippedElements carry no readable text.
var skippedElements = map[string]bool{
	"style": true, "script": true, "noscript": true, "head": true,
	"title": true, "meta": true, "link": true, "iframe": true,
}

// HTMLToText converts an HTML body to plain text. Block elements become line
// breaks and adjacent text nodes are separated by a space, so a link followed
// by a bold label does not merge into one token.
func HTMLToText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return normalizeText(body)
	}

	var sb strings.Builder
	atLineStart := true

	newline := func() {
		if !atLineStart {
			sb.WriteByte('\n')
			atLineStart = true
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skippedElements[tag] {
				return
			}
			if blockElements[tag] {
				newline()
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if !atLineStart {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
				atLineStart = false
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)] {
			newline()
		}
	}
	walk(doc)

	return normalizeText(sb.String())
}

// normalizeText collapses runs of spaces inside each line and drops blank lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
