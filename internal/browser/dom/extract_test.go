package dom_test

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xdruid77/pagescope/internal/browser/dom"
)

const extractTestHTML = `
	<html>
	<body>
	<main>
		<a id="home" href="/home">Home</a>
		<button data-testid="save">Save</button>
		<input type="text" name="q" placeholder="Search">
		<div role="button" class="fake">Fake button</div>
		<button disabled>Frozen</button>
		<div>plain text container</div>
		<form id="login" name="login-form">
			<input type="email" name="email" placeholder="Email">
			<input type="password" name="password">
			<button>Sign in</button>
		</form>
	</main>
	</body>
	</html>
	`

func parseExtractFixture(t *testing.T) *html.Node {
	t.Helper()
	root, err := htmlquery.Parse(strings.NewReader(extractTestHTML))
	require.NoError(t, err)
	return root
}

func TestCaptureElements(t *testing.T) {
	root := parseExtractFixture(t)

	elements, forms := dom.Capture(root, nil)
	require.Len(t, elements, 8)
	require.Len(t, forms, 1)

	tags := make([]string, 0, len(elements))
	for _, el := range elements {
		tags = append(tags, el.Tag)
	}
	// Document order, plain containers excluded.
	assert.Equal(t, []string{"a", "button", "input", "div", "button", "input", "input", "button"}, tags)

	link := elements[0]
	require.NotNil(t, link.Href)
	assert.Equal(t, "/home", *link.Href)
	require.NotNil(t, link.ID)
	assert.Equal(t, "home", *link.ID)
	require.NotNil(t, link.Text)
	assert.Equal(t, "Home", *link.Text)
	assert.Equal(t, "#home", link.Selector)
	require.NotNil(t, link.XPath)
	assert.Equal(t, `//*[@id='home']`, *link.XPath)

	save := elements[1]
	require.NotNil(t, save.TestID)
	assert.Equal(t, "save", *save.TestID)
	assert.Equal(t, `[data-testid="save"]`, save.Selector)

	search := elements[2]
	require.NotNil(t, search.Placeholder)
	assert.Equal(t, "Search", *search.Placeholder)
	require.NotNil(t, search.Name)
	assert.Equal(t, "q", *search.Name)
	assert.Nil(t, search.ID, "absent attribute must stay nil")

	fake := elements[3]
	assert.Equal(t, "div", fake.Tag)
	assert.Equal(t, []string{"fake"}, fake.Classes)

	// Without runtime facts everything counts as visible; only the disabled
	// attribute can suppress interactivity.
	for i, el := range elements {
		assert.True(t, el.Visible, "element %d should be visible", i)
	}
	assert.False(t, elements[4].Interactive, "disabled button must not be interactive")
	assert.True(t, elements[0].Interactive)
}

func TestCaptureForms(t *testing.T) {
	root := parseExtractFixture(t)

	_, forms := dom.Capture(root, nil)
	require.Len(t, forms, 1)

	form := forms[0]
	require.NotNil(t, form.ID)
	assert.Equal(t, "login", *form.ID)
	require.NotNil(t, form.Name)
	assert.Equal(t, "login-form", *form.Name)

	require.Len(t, form.Fields, 2)
	require.NotNil(t, form.Fields[0].Name)
	assert.Equal(t, "email", *form.Fields[0].Name)
	require.NotNil(t, form.Fields[1].Type)
	assert.Equal(t, "password", *form.Fields[1].Type)

	require.NotNil(t, form.Submit, "a typeless button submits its form")
	assert.Equal(t, "button", form.Submit.Tag)
	require.NotNil(t, form.Submit.Text)
	assert.Equal(t, "Sign in", *form.Submit.Text)
}

func TestCaptureIdempotent(t *testing.T) {
	root := parseExtractFixture(t)

	firstElements, firstForms := dom.Capture(root, nil)
	secondElements, secondForms := dom.Capture(root, nil)

	assert.Empty(t, cmp.Diff(firstElements, secondElements))
	assert.Empty(t, cmp.Diff(firstForms, secondForms))
}

func TestCaptureRuntimeFacts(t *testing.T) {
	const stamped = `
		<html>
		<body>
			<button data-ps-i="0">Rendered</button>
			<button data-ps-i="1">Collapsed</button>
			<button data-ps-i="2">Inert</button>
			<button data-ps-i="3">Locked</button>
			<button>Unstamped</button>
		</body>
		</html>
		`
	root, err := htmlquery.Parse(strings.NewReader(stamped))
	require.NoError(t, err)

	facts := dom.RuntimeFacts{
		0: {Width: 120, Height: 32, PointerEvents: "auto"},
		1: {Width: 0, Height: 0, PointerEvents: "auto"},
		2: {Width: 120, Height: 32, PointerEvents: "none"},
		3: {Width: 120, Height: 32, Disabled: true, PointerEvents: "auto"},
	}

	elements, _ := dom.Capture(root, facts)
	require.Len(t, elements, 5)

	assert.True(t, elements[0].Visible)
	assert.True(t, elements[0].Interactive)

	assert.False(t, elements[1].Visible, "zero-size box is not visible")
	assert.True(t, elements[1].Interactive)

	assert.True(t, elements[2].Visible)
	assert.False(t, elements[2].Interactive, "pointer-events none suppresses interactivity")

	assert.True(t, elements[3].Visible)
	assert.False(t, elements[3].Interactive, "runtime disabled state suppresses interactivity")

	// Stamped pass missed this node: it appeared after rendering.
	assert.False(t, elements[4].Visible)
	assert.True(t, elements[4].Interactive)
}

// Elements matched by different branches of the whitelist union (tags, click
// handlers, test ids, roles) must still come back interleaved in document
// order, not grouped by branch. The matcher's first-in-document-order
// tie-break depends on this ordering.
func TestCaptureDocumentOrderAcrossBranches(t *testing.T) {
	const mixed = `
		<html>
		<body>
			<div role="switch">Toggle</div>
			<a href="/one">One</a>
			<div data-testid="card">Card</div>
			<button>First</button>
			<span onclick="go()">Jump</span>
			<input type="text" name="q">
			<button>Second</button>
			<a data-testid="dup" href="/two">Two</a>
		</body>
		</html>
		`
	root, err := htmlquery.Parse(strings.NewReader(mixed))
	require.NoError(t, err)

	elements, _ := dom.Capture(root, nil)
	require.Len(t, elements, 8, "a node matching several branches appears once")

	tags := make([]string, 0, len(elements))
	for _, el := range elements {
		tags = append(tags, el.Tag)
	}
	assert.Equal(t, []string{"div", "a", "div", "button", "span", "input", "button", "a"}, tags)

	require.NotNil(t, elements[7].TestID)
	assert.Equal(t, "dup", *elements[7].TestID)
}

func TestCaptureNilRoot(t *testing.T) {
	elements, forms := dom.Capture(nil, nil)
	assert.Nil(t, elements)
	assert.Nil(t, forms)
}
