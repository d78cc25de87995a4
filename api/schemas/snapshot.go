// api/schemas/snapshot.go
package schemas

import "time"

// ElementDescriptor captures one interactive DOM node at the moment of
// snapshot. Optional attributes are pointers: a nil field means the attribute
// was absent on the node, which is distinct from an empty value.
//
// Descriptors are immutable after capture and carry no identity across
// snapshots.
type ElementDescriptor struct {
	Tag         string   `json:"tag"`
	ID          *string  `json:"id,omitempty"`
	Classes     []string `json:"classes,omitempty"`
	TestID      *string  `json:"testId,omitempty"`
	Text        *string  `json:"text,omitempty"`
	Placeholder *string  `json:"placeholder,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Href        *string  `json:"href,omitempty"`

	// Selector is always present; synthesis is total.
	Selector string `json:"selector"`
	// XPath is a best effort positional locator, absent when the node could
	// not be resolved against the document root.
	XPath *string `json:"xpath,omitempty"`

	// Visible means the rendered bounding box had positive width and height.
	// It deliberately ignores CSS visibility, opacity and occlusion.
	Visible bool `json:"visible"`
	// Interactive means the node is not disabled and pointer-events is not
	// suppressed.
	Interactive bool `json:"interactive"`
}

// FormField is a lightweight descriptor for input/select/textarea nodes
// inside a form.
type FormField struct {
	Tag         string  `json:"tag"`
	Type        *string `json:"type,omitempty"`
	Name        *string `json:"name,omitempty"`
	ID          *string `json:"id,omitempty"`
	Placeholder *string `json:"placeholder,omitempty"`
	Selector    string  `json:"selector"`
}

// SubmitControl describes the first submit-like control found within a form.
type SubmitControl struct {
	Tag      string  `json:"tag"`
	Text     *string `json:"text,omitempty"`
	Selector string  `json:"selector"`
}

// FormDescriptor represents one <form> node and its fields.
type FormDescriptor struct {
	ID     *string        `json:"id,omitempty"`
	Name   *string        `json:"name,omitempty"`
	Fields []FormField    `json:"fields,omitempty"`
	Submit *SubmitControl `json:"submit,omitempty"`
}

// PageSnapshot is the unit of analysis output. It is created per analysis
// request, immutable once returned, and owned exclusively by the caller.
type PageSnapshot struct {
	URL        string              `json:"url"`
	Title      string              `json:"title"`
	Elements   []ElementDescriptor `json:"elements"`
	Forms      []FormDescriptor    `json:"forms,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	CapturedAt time.Time           `json:"capturedAt"`
}

// Action categorizes what the caller intends to do with the resolved element.
// It narrows the candidate set before scoring.
type Action string

const (
	ActionClick  Action = "click"
	ActionType   Action = "type"
	ActionSelect Action = "select"
	ActionOther  Action = "other"
)

// ParseAction normalizes a free-form action string to a known category.
// Unknown strings map to ActionOther, which applies no narrowing.
func ParseAction(s string) Action {
	switch Action(s) {
	case ActionClick, ActionType, ActionSelect:
		return Action(s)
	default:
		return ActionOther
	}
}

// MatchResult is the outcome of one matching request. A result with
// Matched == false is a normal outcome, not an error: callers should fall
// back to another resolution strategy.
type MatchResult struct {
	Matched bool               `json:"matched"`
	Element *ElementDescriptor `json:"element,omitempty"`
	Score   int                `json:"score"`
}
