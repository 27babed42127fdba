package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jinzhu/inflection"
)

// DefaultThreshold is the similarity floor for IsMatch when the caller
// does not override it. Kept configurable upstream; the value has no
// documented derivation.
const DefaultThreshold = 0.8

// Rule names which heuristic explained a similarity score. Only the
// score is consumed today; the rule is kept for auditing.
type Rule string

const (
	RuleExact       Rule = "exact"
	RuleContainment Rule = "containment"
	RulePlural      Rule = "plural"
	RuleEditRatio   Rule = "edit_ratio"
)

// Similarity scores two labels in [0,1]. Heuristics are tried in a fixed
// precedence order; the first that fires wins:
//
//  1. equal after normalization → 1.0
//  2. one normalized string contains the other (non-empty) → 1.0
//  3. singular/plural toggle makes them equal → 1.0
//  4. Levenshtein ratio: 1 - distance/max(len)
func Similarity(a, b string) float64 {
	s, _ := Score(a, b)
	return s
}

// Score is Similarity plus the rule that explained the score.
func Score(a, b string) (float64, Rule) {
	na, nb := Normalize(a), Normalize(b)

	if na == nb {
		return 1.0, RuleExact
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return 1.0, RuleContainment
	}
	if pluralEqual(na, nb) {
		return 1.0, RulePlural
	}

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		// Both empty. Empty labels are rejected upstream, so this is a
		// convention rather than a reachable case.
		return 1.0, RuleExact
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1.0 - float64(dist)/float64(longest), RuleEditRatio
}

// IsMatch reports whether two labels are similar enough to link, at the
// given threshold. A threshold <= 0 falls back to DefaultThreshold.
func IsMatch(a, b string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Similarity(a, b) >= threshold
}

// pluralEqual checks the trailing-s toggle on either side, backed by
// proper English inflection for irregular forms.
func pluralEqual(na, nb string) bool {
	if na == "" || nb == "" {
		return false
	}
	if na+"s" == nb || nb+"s" == na {
		return true
	}
	return inflection.Singular(na) == inflection.Singular(nb)
}
