// Package labels migrates project labels, applying optional name translation
// patterns and matching existing target labels case-insensitively.
package labels

import (
	"regexp"
	"strings"
)

// Rule is one translation pattern, "source:target". A single `*` wildcard in
// the source captures the rest of the name and substitutes into the target.
type Rule struct {
	Source string
	Target string
}

// Translator applies translation rules in order; the first matching rule
// wins and an unmatched name passes through unchanged
type Translator struct {
	rules []Rule
}

// NewTranslator parses "source:target" patterns. The split is on the first
// colon, so target names may themselves contain colons ("p_*:priority: *").
func NewTranslator(patterns []string) (*Translator, error) {
	t := &Translator{}
	for _, pattern := range patterns {
		source, target, found := strings.Cut(pattern, ":")
		if !found {
			return nil, &LabelError{
				Type:    "pattern_error",
				Message: "invalid translation pattern, expected source:target",
				Context: pattern,
			}
		}
		t.rules = append(t.rules, Rule{Source: source, Target: target})
	}
	return t, nil
}

// Translate returns the translated label name, or the input unchanged when
// no rule matches
func (t *Translator) Translate(name string) string {
	for _, rule := range t.rules {
		if strings.Contains(rule.Source, "*") {
			pattern := "^" + strings.ReplaceAll(regexp.QuoteMeta(rule.Source), `\*`, "(.*)") + "$"
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			if m := re.FindStringSubmatch(name); m != nil {
				return strings.Replace(rule.Target, "*", m[1], 1)
			}
		} else if rule.Source == name {
			return rule.Target
		}
	}
	return name
}
