package dom_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xdruid77/pagescope/internal/browser/dom"
)

const selectorTestHTML = `
	<html>
	<body>
		<button data-testid="save-btn" id="save" class="btn primary">Save</button>
		<a id="home" href="/">Home</a>
		<input id="user:name" type="text">
		<button class="px-2 hover:bg">Go</button>
		<div class="card featured"><p>Unique card</p></div>
		<div class="dup"><span>one</span></div>
		<div class="dup"><span>two</span></div>
		<div role="alert">Short warning</div>
		<section><article><p>first</p><p>second</p></article></section>
		<div id="footer"><span>a</span><span>b</span></div>
	</body>
	</html>
	`

func parseSelectorFixture(t *testing.T) (*html.Node, *goquery.Document) {
	t.Helper()
	root, err := htmlquery.Parse(strings.NewReader(selectorTestHTML))
	require.NoError(t, err)
	return root, goquery.NewDocumentFromNode(root)
}

func TestSynthesizeSelector(t *testing.T) {
	root, doc := parseSelectorFixture(t)

	tests := []struct {
		name        string
		targetXPath string
		expected    string
	}{
		{"Test id wins over id", "//button[@data-testid='save-btn']", `[data-testid="save-btn"]`},
		{"Plain id", "//a[@id='home']", "#home"},
		{"Id that is not a CSS identifier", "//input", `[id="user:name"]`},
		{"Unique class intersection", "//div[@class='card featured']", ".card.featured"},
		{"Utility classes get escaped", "//button[@class='px-2 hover:bg']", `.px-2.hover\:bg`},
		{"Role with short text", "//div[@role='alert']", `[role="alert"]:has-text("Short warning")`},
		{"Structural path", "(//article/p)[2]", "section article p:nth-of-type(2)"},
		{"Structural anchored at ancestor id", "(//div[@id='footer']/span)[2]", "#footer span:nth-of-type(2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := htmlquery.FindOne(root, tt.targetXPath)
			require.NotNil(t, target, "Test setup error: target node not found with %s", tt.targetXPath)
			assert.Equal(t, tt.expected, dom.SynthesizeSelector(target, doc))
		})
	}
}

// Sibling elements sharing the same class set must never receive the class
// selector: it would resolve ambiguously. They fall through to the
// structural tier instead, and each structural selector resolves uniquely.
func TestSynthesizeSelectorClassCollision(t *testing.T) {
	root, doc := parseSelectorFixture(t)

	dups := htmlquery.Find(root, "//div[@class='dup']")
	require.Len(t, dups, 2)

	first := dom.SynthesizeSelector(dups[0], doc)
	second := dom.SynthesizeSelector(dups[1], doc)

	assert.NotContains(t, first, ".dup")
	assert.NotContains(t, second, ".dup")
	assert.NotEqual(t, first, second)

	assert.Equal(t, 1, doc.Find(first).Length(), "selector %q must be unique", first)
	assert.Equal(t, 1, doc.Find(second).Length(), "selector %q must be unique", second)
	assert.Equal(t, dups[0], doc.Find(first).Nodes[0])
	assert.Equal(t, dups[1], doc.Find(second).Nodes[0])
}

func TestSynthesizeSelectorTotality(t *testing.T) {
	root, doc := parseSelectorFixture(t)

	// Every element in the fixture gets a non-empty selector.
	for _, n := range htmlquery.Find(root, "//body//*") {
		assert.NotEmpty(t, dom.SynthesizeSelector(n, doc), "no selector for <%s>", n.Data)
	}

	assert.Empty(t, dom.SynthesizeSelector(nil, doc))
}
