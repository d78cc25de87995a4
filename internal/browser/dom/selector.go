// internal/browser/dom/selector.go
package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxRoleTextLen bounds the visible text accepted by the role-based tier.
const maxRoleTextLen = 50

// SynthesizeSelector produces a single best-effort CSS selector for the node.
// It is total: a non-empty string is always returned, falling back to a
// structural tag path when no stable attribute exists anywhere in the
// ancestor chain.
//
// Priority: test id, id, verified-unique class intersection, role plus short
// visible text, structural path. The class tier is trusted only when querying
// the document with it resolves to exactly one node; a collision or a
// selector the engine refuses to parse falls through silently.
func SynthesizeSelector(node *html.Node, doc *goquery.Document) string {
	if node == nil || node.Type != html.ElementNode {
		return ""
	}

	if testID, ok := lookupAttr(node, "data-testid"); ok && testID != "" {
		return fmt.Sprintf(`[data-testid=%q]`, testID)
	}

	if id, ok := lookupAttr(node, "id"); ok && id != "" {
		return idSelector(id)
	}

	if sel := classSelector(node, doc); sel != "" {
		return sel
	}

	if role, ok := lookupAttr(node, "role"); ok && role != "" {
		if text := elementText(node); text != "" && len(text) < maxRoleTextLen {
			return fmt.Sprintf(`[role=%q]:has-text(%q)`, role, text)
		}
	}

	return structuralSelector(node)
}

// idSelector prefers the #id form but switches to the attribute-equality
// form when the id is not a plain CSS identifier, so the produced selector
// is valid by construction.
func idSelector(id string) string {
	if isCSSIdentifier(id) {
		return "#" + id
	}
	return fmt.Sprintf(`[id=%q]`, id)
}

// classSelector builds an escaped class-intersection selector and accepts it
// only if it uniquely identifies the node in the document. Anything else,
// including a query the selector engine rejects, is a collision.
func classSelector(node *html.Node, doc *goquery.Document) string {
	classAttr, ok := lookupAttr(node, "class")
	if !ok {
		return ""
	}
	classes := strings.Fields(classAttr)
	if len(classes) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range classes {
		sb.WriteByte('.')
		sb.WriteString(escapeClass(c))
	}
	sel := sb.String()

	if doc == nil {
		return ""
	}
	matched := queryCount(doc, sel)
	if matched != 1 {
		return ""
	}
	return sel
}

// queryCount runs a selector against the document, treating a panic from the
// selector parser the same as zero matches.
func queryCount(doc *goquery.Document, sel string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return doc.Find(sel).Length()
}

// structuralSelector walks from the node up to (but excluding) body,
// anchoring at the nearest ancestor id when one exists and qualifying levels
// with a same-tag sibling index when needed. Levels are joined with the
// descendant combinator.
func structuralSelector(node *html.Node) string {
	var steps []string
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		tag := strings.ToLower(n.Data)
		if tag == "body" || tag == "html" {
			break
		}

		if id, ok := lookupAttr(n, "id"); ok && id != "" {
			steps = append(steps, idSelector(id))
			break
		}

		step := tag
		if index, ambiguous := sameTagIndex(n); ambiguous {
			step = fmt.Sprintf("%s:nth-of-type(%d)", tag, index)
		}
		steps = append(steps, step)
	}

	if len(steps) == 0 {
		return strings.ToLower(node.Data)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return strings.Join(steps, " ")
}

// isCSSIdentifier reports whether s can be used verbatim after '#' or '.'.
func isCSSIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r > 0x7f:
		case r == '-':
			if i == 0 && len(s) == 1 {
				return false
			}
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// escapeClass backslash-escapes the characters that are special inside a
// class selector (colons, brackets, parentheses, commas, combinators and
// friends, as produced by utility-CSS frameworks).
func escapeClass(c string) string {
	var sb strings.Builder
	for _, r := range c {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
