// Package rulepack loads the classification rules from the embedded rules.json.
// Tables are ordered lists of (label, keyword-set) pairs; the order is the only
// tie-break between labels and must survive loading exactly
package rulepack

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed rules.json
var embedded []byte

type rawRule struct {
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
}

type rawSentiment struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

type rawPack struct {
	Version   int               `json:"version"`
	Meta      map[string]any    `json:"meta"`
	Category  []rawRule         `json:"category"`
	Urgency   []rawRule         `json:"urgency"`
	Intent    []rawRule         `json:"intent"`
	Sentiment rawSentiment      `json:"sentiment"`
	Fallbacks map[string]string `json:"fallbacks"`
}

// Rule is one (label, keyword-set) pair in an ordered table
type Rule struct {
	Label    string
	Keywords []string
}

// Table is an ordered first-match-wins rule list with a fallback label
type Table struct {
	Rules    []Rule
	Fallback string
}

// Pack represents the compiled rule pack for the classifiers
type Pack struct {
	Version int
	Meta    map[string]any

	Category Table
	Urgency  Table
	Intent   Table

	// Sentiment is count-based, not first-match
	Positive []string
	Negative []string
	Neutral  string
}

// Load returns the compiled pack from the embedded rules.json
func Load() (*Pack, error) {
	return Parse(embedded)
}

// Parse compiles a rule pack from raw JSON; exported so alternate packs can be
// loaded from disk without touching the embedded default
func Parse(data []byte) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("rulepack: unsupported rules.json version %d (want 1)", rp.Version)
	}

	p := &Pack{
		Version:  rp.Version,
		Meta:     rp.Meta,
		Positive: cleanKeywords(rp.Sentiment.Positive),
		Negative: cleanKeywords(rp.Sentiment.Negative),
		Neutral:  rp.Fallbacks["sentiment"],
	}

	var err error
	if p.Category, err = compileTable("category", rp.Category, rp.Fallbacks["category"]); err != nil {
		return nil, err
	}
	if p.Urgency, err = compileTable("urgency", rp.Urgency, rp.Fallbacks["urgency"]); err != nil {
		return nil, err
	}
	if p.Intent, err = compileTable("intent", rp.Intent, rp.Fallbacks["intent"]); err != nil {
		return nil, err
	}
	if p.Neutral == "" {
		return nil, fmt.Errorf("rulepack: missing sentiment fallback")
	}
	if len(p.Positive) == 0 || len(p.Negative) == 0 {
		return nil, fmt.Errorf("rulepack: empty sentiment keyword list")
	}

	return p, nil
}

// compileTable preserves rule order, lowercases keywords, and rejects
// structurally broken tables early
func compileTable(name string, in []rawRule, fallback string) (Table, error) {
	if fallback == "" {
		return Table{}, fmt.Errorf("rulepack: missing %s fallback", name)
	}
	if len(in) == 0 {
		return Table{}, fmt.Errorf("rulepack: empty %s table", name)
	}
	t := Table{Fallback: fallback, Rules: make([]Rule, 0, len(in))}
	for i, r := range in {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return Table{}, fmt.Errorf("rulepack: %s rule %d has no label", name, i)
		}
		kws := cleanKeywords(r.Keywords)
		if len(kws) == 0 {
			return Table{}, fmt.Errorf("rulepack: %s rule %q has no keywords", name, label)
		}
		t.Rules = append(t.Rules, Rule{Label: label, Keywords: kws})
	}
	return t, nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
