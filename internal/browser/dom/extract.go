// internal/browser/dom/extract.go
package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xdruid77/pagescope/api/schemas"
)

// interactiveXPath is the whitelist of nodes the extractor considers
// interactive: the form/control tags, anchors, anything with a click handler
// attribute or a test id, and the explicit interactive ARIA roles.
const interactiveXPath = `
	//a | //button | //input | //select | //textarea |
	//*[@onclick] | //*[@data-testid] |
	//*[@role='button' or @role='link' or @role='tab' or @role='menuitem' or
	    @role='checkbox' or @role='radio' or @role='textbox' or
	    @role='combobox' or @role='searchbox' or @role='switch' or
	    @role='option']
`

// Capture walks the document once and returns the element and form
// descriptor lists in document order. Selector and XPath synthesis happen
// here, against the same document instant, because the structural fallback
// tiers depend on the tree as it stands.
//
// facts may be nil for a synthetic document; extraction then falls back to
// HTML-only visibility and interactivity signals.
func Capture(root *html.Node, facts RuntimeFacts) ([]schemas.ElementDescriptor, []schemas.FormDescriptor) {
	if root == nil {
		return nil, nil
	}
	doc := goquery.NewDocumentFromNode(root)

	elements := make([]schemas.ElementDescriptor, 0, 32)
	for _, node := range findInteractive(root) {
		desc, ok := describeElement(node, doc, facts)
		if !ok {
			continue
		}
		elements = append(elements, desc)
	}

	var forms []schemas.FormDescriptor
	for _, formNode := range htmlquery.Find(root, "//form") {
		forms = append(forms, describeForm(formNode, doc))
	}
	return elements, forms
}

// findInteractive runs the whitelist query and deduplicates nodes matched by
// more than one branch of the union. The union result comes back grouped by
// branch, so the matched set is re-emitted with one depth-first pass to
// restore document order.
func findInteractive(root *html.Node) []*html.Node {
	candidates := htmlquery.Find(root, interactiveXPath)
	matched := make(map[*html.Node]bool, len(candidates))
	for _, n := range candidates {
		if n != nil && n.Type == html.ElementNode {
			matched[n] = true
		}
	}

	nodes := make([]*html.Node, 0, len(matched))
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for ; n != nil; n = n.NextSibling {
			if matched[n] {
				nodes = append(nodes, n)
			}
			walk(n.FirstChild)
		}
	}
	walk(root)
	return nodes
}

// describeElement builds one descriptor. A node that cannot be described
// (malformed, unnameable) is skipped rather than aborting the snapshot.
func describeElement(node *html.Node, doc *goquery.Document, facts RuntimeFacts) (schemas.ElementDescriptor, bool) {
	tag := strings.ToLower(node.Data)
	if tag == "" {
		return schemas.ElementDescriptor{}, false
	}

	selector := SynthesizeSelector(node, doc)
	if selector == "" {
		return schemas.ElementDescriptor{}, false
	}

	desc := schemas.ElementDescriptor{
		Tag:         tag,
		ID:          optAttr(node, "id"),
		Classes:     classList(node),
		TestID:      optAttr(node, "data-testid"),
		Placeholder: optAttr(node, "placeholder"),
		Type:        optAttr(node, "type"),
		Name:        optAttr(node, "name"),
		Href:        optAttr(node, "href"),
		Selector:    selector,
	}
	if text := elementText(node); text != "" {
		desc.Text = &text
	}
	if xpath, ok := SynthesizeXPath(node); ok {
		desc.XPath = &xpath
	}

	desc.Visible, desc.Interactive = runtimeState(node, facts)
	return desc, true
}

// runtimeState derives the visibility and interactivity flags.
//
// Visibility is solely "the rendered bounding box has positive width and
// height". It does not consider CSS visibility, opacity or occlusion;
// downstream scoring depends on exactly this weak definition.
func runtimeState(node *html.Node, facts RuntimeFacts) (visible, interactive bool) {
	disabledAttr := hasAttr(node, "disabled")

	if facts == nil {
		return true, !disabledAttr
	}

	stamp, ok := lookupAttr(node, StampAttr)
	if !ok {
		// Stamped after render but missing here: the node appeared between
		// the stamping pass and the capture. Treat as not rendered.
		return false, !disabledAttr
	}
	idx, err := strconv.Atoi(stamp)
	if err != nil {
		return false, !disabledAttr
	}
	f, ok := facts[idx]
	if !ok {
		return false, !disabledAttr
	}

	visible = f.Width > 0 && f.Height > 0
	interactive = !disabledAttr && !f.Disabled && f.PointerEvents != "none"
	return visible, interactive
}

// describeForm collects a form's fields and its first submit-like control.
func describeForm(form *html.Node, doc *goquery.Document) schemas.FormDescriptor {
	desc := schemas.FormDescriptor{
		ID:   optAttr(form, "id"),
		Name: optAttr(form, "name"),
	}

	for _, field := range htmlquery.Find(form, ".//input | .//select | .//textarea") {
		selector := SynthesizeSelector(field, doc)
		if selector == "" {
			continue
		}
		desc.Fields = append(desc.Fields, schemas.FormField{
			Tag:         strings.ToLower(field.Data),
			Type:        optAttr(field, "type"),
			Name:        optAttr(field, "name"),
			ID:          optAttr(field, "id"),
			Placeholder: optAttr(field, "placeholder"),
			Selector:    selector,
		})
	}

	// A <button> without an explicit non-submit type submits its form.
	submitXPath := `.//input[@type='submit'] | .//button[@type='submit' or not(@type) or @type='']`
	if submit := htmlquery.FindOne(form, submitXPath); submit != nil {
		control := schemas.SubmitControl{
			Tag:      strings.ToLower(submit.Data),
			Selector: SynthesizeSelector(submit, doc),
		}
		if text := elementText(submit); text != "" {
			control.Text = &text
		}
		desc.Submit = &control
	}
	return desc
}

func optAttr(n *html.Node, key string) *string {
	if val, ok := lookupAttr(n, key); ok {
		v := val
		return &v
	}
	return nil
}

func classList(n *html.Node) []string {
	val, ok := lookupAttr(n, "class")
	if !ok {
		return nil
	}
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
