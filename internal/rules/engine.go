// Package rules attaches advisory tags to transactions at commit time.
package rules

import "github.com/adikusuma/duitbot/internal/model"

// Context carries the transaction facts rules are evaluated against.
type Context struct {
	Category model.Category
	Amount   float64
	Hour     int
}

// Rule pairs a predicate with the tag it fires. Rules are independent and
// non-exclusive; any number may fire for one transaction.
type Rule struct {
	Applies func(Context) bool
	Tag     string
}

// DefaultRules returns the built-in tagging rules: heavy food spending is
// flagged "boros", late-night transactions "impulsive".
func DefaultRules() []Rule {
	return []Rule{
		{
			Tag: "boros",
			Applies: func(c Context) bool {
				return c.Category == model.CategoryMakanan && c.Amount > 50000
			},
		},
		{
			Tag: "impulsive",
			Applies: func(c Context) bool {
				return c.Hour >= 22
			},
		},
	}
}

// Engine evaluates an ordered rule list. Evaluation is a pure function of
// the context; tags never block commitment.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the given rules. Nil means the default
// rule set.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Evaluate returns the tags of every rule whose predicate holds, in rule
// order. The result may be empty.
func (e *Engine) Evaluate(c Context) []string {
	var tags []string
	for _, r := range e.rules {
		if r.Applies(c) {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}
