// internal/browser/dom/dom.go
//
// Package dom implements the pure page-analysis algorithms: interactive
// element extraction, selector and XPath synthesis, and structural
// summarization. Everything in this package operates on a locally parsed
// *html.Node tree and is independent of the browser binding, so it can be
// exercised against synthetic documents in tests.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// StampAttr is the attribute the session layer stamps onto whitelisted
// elements before capturing the document, linking each node to its runtime
// facts. It is internal plumbing: selector synthesis and the summarizer
// never emit it.
const StampAttr = "data-ps-i"

// ElementFacts holds the runtime signals for one stamped element, harvested
// from the live page in a single evaluation.
type ElementFacts struct {
	Width         float64 `json:"w"`
	Height        float64 `json:"h"`
	Disabled      bool    `json:"disabled"`
	PointerEvents string  `json:"pointerEvents"`
}

// RuntimeFacts maps stamp indices to element facts. A nil map means the
// document was obtained without a rendering pass (synthetic DOM); extraction
// then falls back to HTML-only signals.
type RuntimeFacts map[int]ElementFacts

// lookupAttr returns an attribute value and whether the attribute exists,
// preserving the absent/empty distinction that descriptor optionality
// depends on.
func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

// collapseSpace trims the string and folds internal whitespace runs into
// single spaces. Rendered text nodes are frequently broken across lines in
// markup; matching and role-based selectors need the rendered form.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// elementText returns the collapsed text content of a node.
func elementText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
				sb.WriteByte(' ')
			case html.ElementNode:
				if isSkippedTag(c.Data) {
					continue
				}
				walk(c.FirstChild)
			}
		}
	}
	if n != nil {
		walk(n.FirstChild)
	}
	return collapseSpace(sb.String())
}

func isSkippedTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style":
		return true
	}
	return false
}

// sameTagIndex returns the 1-based position of n among element siblings with
// the same tag, and whether any other same-tag sibling exists at all.
func sameTagIndex(n *html.Node) (int, bool) {
	if n.Parent == nil {
		return 1, false
	}
	index := 0
	total := 0
	for sib := n.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || !strings.EqualFold(sib.Data, n.Data) {
			continue
		}
		total++
		if sib == n {
			index = total
		}
	}
	if index == 0 {
		index = 1
	}
	return index, total > 1
}
