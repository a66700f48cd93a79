// Package htmltext converts HTML fragments from the hiring API (job
// descriptions, reviews, candidate messages) into plain text.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags emit a line break when closed so paragraphs and list items stay
// separated in the extracted text.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "li": {}, "tr": {}, "ul": {}, "ol": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"table": {}, "blockquote": {},
}

// Clean strips all tags from the fragment, converts <br> and block elements
// to newlines, unescapes entities and collapses blank lines.
func Clean(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	collectText(doc, &b)

	return collapse(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		if n.Data == "br" {
			b.WriteString("\n")
		}
		// Script and style bodies are not content.
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}

	if n.Type == html.ElementNode {
		if _, ok := blockTags[n.Data]; ok {
			b.WriteString("\n")
		}
	}
}

// collapse trims every line and drops runs of empty lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// Link is a hyperlink found inside an HTML fragment.
type Link struct {
	URL  string
	Name string
}

// FindDocumentLinks returns anchors pointing at PDF, DOCX or DOC files. The
// link name falls back to the last path segment when the anchor has no text.
func FindDocumentLinks(fragment string) []Link {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}

				href := strings.TrimSpace(attr.Val)
				name := strings.TrimSpace(anchorText(n))
				if name == "" {
					parts := strings.Split(href, "/")
					name = parts[len(parts)-1]
				}

				if IsDocumentFile(href, name) {
					links = append(links, Link{URL: href, Name: name})
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return links
}

// IsDocumentFile reports whether the URL or display name ends in a
// supported document extension. Query strings are ignored.
func IsDocumentFile(url, name string) bool {
	if url == "" || name == "" {
		return false
	}

	trimmed := strings.ToLower(strings.SplitN(url, "?", 2)[0])
	lowName := strings.ToLower(name)
	for _, ext := range []string{".pdf", ".docx", ".doc"} {
		if strings.HasSuffix(trimmed, ext) || strings.HasSuffix(lowName, ext) {
			return true
		}
	}

	return false
}

func anchorText(n *html.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		} else {
			b.WriteString(anchorText(child))
		}
	}
	return b.String()
}
