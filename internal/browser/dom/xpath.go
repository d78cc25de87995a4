// internal/browser/dom/xpath.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// SynthesizeXPath produces a positional XPath for a node as a secondary,
// attribute-independent locator. An element with an id anchors the path at
// the id form and stops climbing. The second return value is false when the
// node cannot be resolved (nil, detached, or not an element); callers treat
// that as "locator absent", never as an error.
func SynthesizeXPath(node *html.Node) (string, bool) {
	if node == nil || node.Type != html.ElementNode {
		return "", false
	}

	var steps []string
	anchored := false
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		if id := htmlquery.SelectAttr(n, "id"); id != "" {
			steps = append(steps, fmt.Sprintf(`//*[@id='%s']`, id))
			anchored = true
			break
		}

		// 1-based index among preceding same-tag siblings.
		index := 1
		for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type == html.ElementNode && strings.EqualFold(prev.Data, tag) {
				index++
			}
		}
		steps = append(steps, fmt.Sprintf("%s[%d]", tag, index))
	}

	if len(steps) == 0 {
		return "", false
	}
	// A path that never reached the document root belongs to a detached
	// subtree; report the locator as absent.
	if !anchored {
		root := node
		for root.Parent != nil {
			root = root.Parent
		}
		if root.Type != html.DocumentNode {
			return "", false
		}
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	path := strings.Join(steps, "/")
	if !anchored {
		path = "/" + path
	}
	return path, true
}
