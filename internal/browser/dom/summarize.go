// internal/browser/dom/summarize.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// TruncationMarker terminates a summary that hit its byte budget. Consumers
// must tolerate truncated, possibly unbalanced structure after it.
const TruncationMarker = "...[truncated]"

// summaryAttrs is the attribute allow-list kept on summarized nodes.
var summaryAttrs = []string{
	"id", "class", "data-testid", "name", "type", "placeholder",
	"aria-label", "role", "href", "value", "for", "title",
}

// maxLeafTextLen bounds the text included for leaf nodes.
const maxLeafTextLen = 200

// Summarize produces a pruned, size-bounded structural rendering of the page
// for downstream reasoning. It prefers a <main> element as root, then an
// element with role "main", then the document body. Script and style
// subtrees are dropped entirely; a child subtree that reduces to nothing is
// omitted. The output is hard-capped at maxBytes.
func Summarize(doc *html.Node, maxBytes int) string {
	if doc == nil || maxBytes <= 0 {
		return ""
	}

	root := htmlquery.FindOne(doc, "//main")
	if root == nil {
		root = htmlquery.FindOne(doc, "//*[@role='main']")
	}
	if root == nil {
		root = htmlquery.FindOne(doc, "//body")
	}
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	summarizeNode(root, &sb)
	out := sb.String()

	if len(out) > maxBytes {
		// A budget that cannot even hold the marker yields nothing; a
		// clipped marker would break the "truncation always ends with the
		// marker" contract.
		if maxBytes < len(TruncationMarker) {
			return ""
		}
		out = out[:maxBytes-len(TruncationMarker)] + TruncationMarker
	}
	return out
}

// summarizeNode renders one element if it retains anything, returning
// whether it contributed output.
func summarizeNode(n *html.Node, sb *strings.Builder) bool {
	if n == nil {
		return false
	}
	if n.Type == html.DocumentNode {
		kept := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if summarizeNode(c, sb) {
				kept = true
			}
		}
		return kept
	}
	if n.Type != html.ElementNode || isSkippedTag(n.Data) {
		return false
	}

	tag := strings.ToLower(n.Data)
	attrs := renderAttrs(n)

	// Children render into a scratch buffer so an empty subtree can be
	// dropped without emitting its wrapper.
	var childBuf strings.Builder
	hasElementChild := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			hasElementChild = true
			summarizeNode(c, &childBuf)
		}
	}

	text := ""
	if !hasElementChild {
		if t := elementText(n); len(t) >= 1 && len(t) <= maxLeafTextLen {
			text = t
		}
	}

	body := childBuf.String()
	if attrs == "" && text == "" && body == "" {
		return false
	}

	sb.WriteByte('<')
	sb.WriteString(tag)
	sb.WriteString(attrs)
	sb.WriteByte('>')
	sb.WriteString(text)
	sb.WriteString(body)
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
	return true
}

func renderAttrs(n *html.Node) string {
	var sb strings.Builder
	for _, key := range summaryAttrs {
		if val, ok := lookupAttr(n, key); ok && val != "" {
			fmt.Fprintf(&sb, " %s=%q", key, val)
		}
	}
	return sb.String()
}
