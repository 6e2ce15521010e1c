// Package rules holds the rewrite pattern catalog: an ordered, immutable
// collection of categorized rules the coherence engine matches against input
// text. The package is pure data; it performs no matching itself.
package rules

import (
	"regexp"

	"github.com/lunabriana98-creator/luna-app/internal/models"
)

// Category names one group of related rules. Category order is significant:
// when two rules match at the same offset, the one belonging to the earlier
// category (or listed earlier within its category) wins.
type Category string

const (
	Hedging     Category = "hedging"
	Uncertainty Category = "uncertainty"
	WeakVerbs   Category = "weak_verbs"
	Passive     Category = "passive"
	Questions   Category = "questions"
	SelfTalk    Category = "selftalk"
	Filler      Category = "filler"
	Grammar     Category = "grammar"
)

// ChangeType maps a rule category onto the coarser change label recorded on
// each edit. Filler and self-talk share a label.
func (c Category) ChangeType() models.ChangeType {
	switch c {
	case Hedging:
		return models.ChangeHedgingRemoved
	case Uncertainty:
		return models.ChangeUncertaintyRemoved
	case WeakVerbs:
		return models.ChangeWeakVerbStrengthened
	case Passive:
		return models.ChangePassiveToActive
	case Questions:
		return models.ChangeQuestionRemoved
	case Grammar:
		return models.ChangeGrammarFixed
	default:
		return models.ChangeQualifierRemoved
	}
}

// Rule is one rewrite pattern: a case-insensitive matcher, a literal
// replacement (empty means delete the match), a human-readable explanation,
// and a positive confidence-impact weight.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	Explanation string
	Weight      int
}

// RuleSet is the ordered list of rules for one category.
type RuleSet struct {
	Category Category
	Rules    []Rule
}

// Library is the full ordered catalog. It is immutable after construction
// and safe to share across any number of concurrent callers.
type Library struct {
	sets []RuleSet
}

// NewLibrary builds a library from ordered rule sets. The slice is not
// copied deeply; callers must not mutate rules after construction.
func NewLibrary(sets []RuleSet) *Library {
	return &Library{sets: sets}
}

// Sets returns the ordered rule sets.
func (l *Library) Sets() []RuleSet {
	return l.sets
}

// Each calls fn for every rule in catalog order.
func (l *Library) Each(fn func(cat Category, r Rule)) {
	for _, set := range l.sets {
		for _, r := range set.Rules {
			fn(set.Category, r)
		}
	}
}

// Len returns the total number of rules across all categories.
func (l *Library) Len() int {
	n := 0
	for _, set := range l.sets {
		n += len(set.Rules)
	}
	return n
}

func ci(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
