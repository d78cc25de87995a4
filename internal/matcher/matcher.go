// internal/matcher/matcher.go
//
// Package matcher ranks snapshot elements against a free-text target
// description. It is pure: no browser, no DOM, just descriptors and a
// scoring policy.
package matcher

import (
	"strings"

	"github.com/xdruid77/pagescope/api/schemas"
)

// Signal weights. Magnitudes are tunable policy constants; their relative
// order is not: exact text > test id > id > placeholder > text substring >
// name > class word / type token > tag token.
const (
	weightTextExact     = 100
	weightTestID        = 90
	weightID            = 85
	weightPlaceholder   = 60
	weightTextSubstring = 50
	weightName          = 40
	weightClassWord     = 15
	weightTypeToken     = 15
	weightTagToken      = 10

	// scoreThreshold is the minimum aggregate score to accept a candidate.
	// A lone text-substring hit is the weakest acceptable match.
	scoreThreshold = 50
)

// Match filters elements by action category, scores the survivors against
// the description, and returns the best candidate at or above the confidence
// threshold. Ties on the top score resolve to the earliest element in
// document order. A result with Matched == false is a normal outcome.
func Match(description string, elements []schemas.ElementDescriptor, action schemas.Action) schemas.MatchResult {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return schemas.MatchResult{}
	}
	hyphenated := strings.Join(strings.Fields(desc), "-")
	words := strings.Fields(desc)

	best := schemas.MatchResult{}
	for i := range elements {
		el := &elements[i]
		if !el.Visible || !el.Interactive {
			continue
		}
		if !eligible(el, action) {
			continue
		}
		score := score(el, desc, hyphenated, words)
		// Strict inequality keeps the first-in-document-order winner on ties.
		if score > best.Score {
			best = schemas.MatchResult{Element: el, Score: score}
		}
	}

	if best.Score >= scoreThreshold {
		best.Matched = true
		return best
	}
	return schemas.MatchResult{Score: best.Score}
}

// eligible narrows the candidate set by action category before scoring.
func eligible(el *schemas.ElementDescriptor, action schemas.Action) bool {
	typ := ""
	if el.Type != nil {
		typ = strings.ToLower(*el.Type)
	}
	switch action {
	case schemas.ActionClick:
		switch el.Tag {
		case "button", "a":
			return true
		default:
			switch typ {
			case "submit", "button", "checkbox", "radio":
				return true
			}
			return false
		}
	case schemas.ActionType:
		if el.Tag == "textarea" {
			return true
		}
		if el.Tag == "input" {
			return typ != "submit" && typ != "button"
		}
		return false
	case schemas.ActionSelect:
		return el.Tag == "select"
	default:
		return true
	}
}

// score accumulates contributions from independent signal channels. Channels
// are additive; a candidate can collect from several at once.
func score(el *schemas.ElementDescriptor, desc, hyphenated string, words []string) int {
	total := 0

	if el.Text != nil {
		text := strings.ToLower(strings.TrimSpace(*el.Text))
		if text == desc {
			total += weightTextExact
		} else if text != "" && strings.Contains(text, desc) {
			total += weightTextSubstring
		}
	}

	if el.Placeholder != nil && strings.Contains(strings.ToLower(*el.Placeholder), desc) {
		total += weightPlaceholder
	}

	if el.TestID != nil && strings.Contains(strings.ToLower(*el.TestID), hyphenated) {
		total += weightTestID
	}

	if el.ID != nil && strings.Contains(strings.ToLower(*el.ID), hyphenated) {
		total += weightID
	}

	if el.Name != nil {
		name := strings.ToLower(*el.Name)
		if strings.Contains(name, desc) || strings.Contains(name, hyphenated) {
			total += weightName
		}
	}

	// A present-but-empty type attribute must not fire: every description
	// contains the empty string.
	if el.Type != nil && *el.Type != "" && strings.Contains(desc, strings.ToLower(*el.Type)) {
		total += weightTypeToken
	}

	if strings.Contains(desc, el.Tag) {
		total += weightTagToken
	}

	for _, word := range words {
		for _, class := range el.Classes {
			if strings.Contains(strings.ToLower(class), word) {
				total += weightClassWord
				break
			}
		}
	}

	return total
}
