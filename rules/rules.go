// Package rules resolves per-extension heading rule specifications into
// ordered, compiled rule sets.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/joeychilson/regexpoutline/logger"
)

// Defaults for keys omitted from a rule.
const (
	DefaultNameIdx = 1
	DefaultDetail  = ""
)

// RawRule is one heading rule as written in a rule specification.
// Pointer fields are nil when the key was absent.
type RawRule struct {
	Level   int     `json:"level" yaml:"level"`
	Format  string  `json:"format" yaml:"format"`
	NameIdx *int    `json:"nameIdx,omitempty" yaml:"nameIdx,omitempty"`
	Detail  *string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// RawRuleSet is the rule specification for one file-extension suffix.
// Ext is required; an explicit empty string matches every document.
type RawRuleSet struct {
	Ext     *string   `json:"ext" yaml:"ext"`
	ShowTOF *bool     `json:"showTOF,omitempty" yaml:"showTOF,omitempty"`
	ShowEOF *bool     `json:"showEOF,omitempty" yaml:"showEOF,omitempty"`
	Bullets []string  `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	Rules   []RawRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// HeadingRule recognizes one class of heading line.
type HeadingRule struct {
	Level   int    `json:"level"`
	Format  string `json:"format"`
	NameIdx int    `json:"nameIdx"`
	Detail  string `json:"detail"`

	re *regexp.Regexp
}

// Valid reports whether the rule's pattern compiled.
func (r HeadingRule) Valid() bool {
	return r.re != nil
}

// Match runs the rule against a full line and returns the text of the
// capture group at NameIdx. A match without that group is no match.
func (r HeadingRule) Match(line string) (string, bool) {
	if r.re == nil {
		return "", false
	}
	m := r.re.FindStringSubmatch(line)
	if m == nil || len(m) < r.NameIdx+1 {
		return "", false
	}
	return m[r.NameIdx], true
}

// RuleSet is the ordered list of heading rules for documents whose name ends with Ext.
type RuleSet struct {
	Ext     string        `json:"ext"`
	ShowTOF bool          `json:"showTOF"`
	ShowEOF bool          `json:"showEOF"`
	Rules   []HeadingRule `json:"rules"`
}

// Match returns the first rule matching line, in declaration order.
func (s RuleSet) Match(line string) (HeadingRule, string, bool) {
	for _, rule := range s.Rules {
		if name, ok := rule.Match(line); ok {
			return rule, name, true
		}
	}
	return HeadingRule{}, "", false
}

// Bullets desugars a list of line-start bullets into one rule per level.
// Bullet text is spliced into the pattern as-is, so regex metacharacters
// must already be escaped by whoever wrote the bullet.
func Bullets(bullets []string) []RawRule {
	rules := make([]RawRule, 0, len(bullets))
	for i, bullet := range bullets {
		nameIdx := DefaultNameIdx
		detail := DefaultDetail
		rules = append(rules, RawRule{
			Level:   i + 1,
			Format:  "^" + bullet + "(.+)$",
			NameIdx: &nameIdx,
			Detail:  &detail,
		})
	}
	return rules
}

// Validate checks a raw specification for values no rule set can honor.
func Validate(raw []RawRuleSet) error {
	for i, set := range raw {
		if set.Ext == nil {
			return fmt.Errorf("[%d]: 'ext' is required", i)
		}
		if set.Bullets != nil {
			continue
		}
		for j, rule := range set.Rules {
			ctx := fmt.Sprintf("[%d](%s).rules[%d]", i, *set.Ext, j)
			if rule.Level < 1 {
				return fmt.Errorf("%s: 'level' must be >= 1 (got %d)", ctx, rule.Level)
			}
			if rule.NameIdx != nil && *rule.NameIdx < 0 {
				return fmt.Errorf("%s: 'nameIdx' must be >= 0 (got %d)", ctx, *rule.NameIdx)
			}
		}
	}
	return nil
}

// Resolve validates a raw specification, fills defaults, expands bullets and
// compiles every pattern. An invalid specification resolves to no rule sets.
// A pattern that does not compile stays in place and never matches.
func Resolve(raw []RawRuleSet, log logger.Logger) []RuleSet {
	if log == nil {
		log = logger.Noop()
	}
	if err := Validate(raw); err != nil {
		log.Error("invalid rule specification", "error", err)
		return []RuleSet{}
	}

	sets := make([]RuleSet, 0, len(raw))
	for _, r := range raw {
		set := RuleSet{
			Ext:     *r.Ext,
			ShowTOF: boolOr(r.ShowTOF, true),
			ShowEOF: boolOr(r.ShowEOF, true),
		}

		rawRules := r.Rules
		if r.Bullets != nil {
			rawRules = Bullets(r.Bullets)
		}

		set.Rules = make([]HeadingRule, 0, len(rawRules))
		for _, rr := range rawRules {
			rule := HeadingRule{
				Level:   rr.Level,
				Format:  rr.Format,
				NameIdx: intOr(rr.NameIdx, DefaultNameIdx),
				Detail:  stringOr(rr.Detail, DefaultDetail),
			}
			re, err := regexp.Compile(rr.Format)
			if err != nil {
				log.Warn("heading pattern does not compile, rule will never match",
					"ext", *r.Ext, "level", rr.Level, "format", rr.Format, "error", err)
			} else {
				rule.re = re
			}
			set.Rules = append(set.Rules, rule)
		}

		sets = append(sets, set)
	}
	return sets
}

// Select returns the first rule set whose Ext is a suffix of name.
func Select(sets []RuleSet, name string) (RuleSet, bool) {
	for _, set := range sets {
		if strings.HasSuffix(name, set.Ext) {
			return set, true
		}
	}
	return RuleSet{}, false
}

// Fingerprint identifies a list of resolved rule sets, for cache keys.
func Fingerprint(sets []RuleSet) string {
	h := sha256.New()
	for _, set := range sets {
		fmt.Fprintf(h, "%q|%t|%t\n", set.Ext, set.ShowTOF, set.ShowEOF)
		for _, rule := range set.Rules {
			fmt.Fprintf(h, "%d|%q|%d|%q\n", rule.Level, rule.Format, rule.NameIdx, rule.Detail)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ptr returns a pointer to v, for the optional fields of raw rules.
func Ptr[T any](v T) *T {
	return &v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
