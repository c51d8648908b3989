// Package classify implements the rule-table classifiers over message bodies
package classify

import (
	"strings"

	"chatlake/internal/core/normalize"
	"chatlake/internal/core/rulepack"
)

// Labels is one classification result; no field is ever empty
type Labels struct {
	Category  string
	Sentiment string
	Urgency   string
	Intent    string
}

// Classifier runs the pack's tables over folded body text.
// The matching algorithm assumes nothing about label names or keyword content
// beyond "ordered list of (label, keyword-set)"
type Classifier struct {
	p      *rulepack.Pack
	folder *normalize.Folder
}

// New creates a Classifier over a compiled pack
func New(p *rulepack.Pack) *Classifier {
	return &Classifier{p: p, folder: normalize.New()}
}

// Classify folds the body once and evaluates all four classifiers.
// Every body, including empty, maps to exactly one label per classifier
func (c *Classifier) Classify(body string) Labels {
	if body == "" {
		return Labels{
			Category:  c.p.Category.Fallback,
			Sentiment: c.p.Neutral,
			Urgency:   c.p.Urgency.Fallback,
			Intent:    c.p.Intent.Fallback,
		}
	}
	folded := c.folder.Fold(body)
	return Labels{
		Category:  matchTable(folded, c.p.Category),
		Sentiment: c.sentiment(folded),
		Urgency:   matchTable(folded, c.p.Urgency),
		Intent:    matchTable(folded, c.p.Intent),
	}
}

// Category classifies the body against the category table
func (c *Classifier) Category(body string) string {
	if body == "" {
		return c.p.Category.Fallback
	}
	return matchTable(c.folder.Fold(body), c.p.Category)
}

// Urgency classifies the body against the urgency table
func (c *Classifier) Urgency(body string) string {
	if body == "" {
		return c.p.Urgency.Fallback
	}
	return matchTable(c.folder.Fold(body), c.p.Urgency)
}

// Intent classifies the body against the intent table
func (c *Classifier) Intent(body string) string {
	if body == "" {
		return c.p.Intent.Fallback
	}
	return matchTable(c.folder.Fold(body), c.p.Intent)
}

// Sentiment counts positive and negative keyword hits across the whole body;
// strictly greater wins, ties (including zero/zero) are neutral
func (c *Classifier) Sentiment(body string) string {
	if body == "" {
		return c.p.Neutral
	}
	return c.sentiment(c.folder.Fold(body))
}

func (c *Classifier) sentiment(folded string) string {
	pos := countHits(folded, c.p.Positive)
	neg := countHits(folded, c.p.Negative)
	switch {
	case pos > neg:
		return "Positive"
	case neg > pos:
		return "Negative"
	default:
		return c.p.Neutral
	}
}

// matchTable is first-match-wins: tables are scanned label by label,
// keyword by keyword; the first label with any matching keyword is returned
func matchTable(folded string, t rulepack.Table) string {
	for _, r := range t.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(folded, kw) {
				return r.Label
			}
		}
	}
	return t.Fallback
}

// countHits counts how many keywords from the list occur in the body
// (each keyword at most once, matching the original counting semantics)
func countHits(folded string, kws []string) int {
	n := 0
	for _, kw := range kws {
		if strings.Contains(folded, kw) {
			n++
		}
	}
	return n
}
