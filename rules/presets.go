package rules

import (
	"fmt"
	"slices"
	"strings"
)

// presets are ready-made specifications for common plain-text heading styles.
var presets = map[string][]RawRuleSet{
	"markdown": {{
		Ext:   Ptr(".md"),
		Rules: headingLevels(`^%s\s+(.+?)\s*#*\s*$`, "#", 6),
	}},
	"org": {{
		Ext:   Ptr(".org"),
		Rules: headingLevels(`^%s\s+(.+)$`, `\*`, 6),
	}},
	"asciidoc": {{
		Ext:   Ptr(".adoc"),
		Rules: headingLevels(`^=%s\s+(.+)$`, "=", 5),
	}},
}

// headingLevels builds one rule per level where the level is written as
// the marker repeated level times.
func headingLevels(format, marker string, levels int) []RawRule {
	rules := make([]RawRule, 0, levels)
	for level := 1; level <= levels; level++ {
		rules = append(rules, RawRule{
			Level:  level,
			Format: fmt.Sprintf(format, strings.Repeat(marker, level)),
		})
	}
	return rules
}

// Preset returns a copy of the named preset specification.
func Preset(name string) ([]RawRuleSet, error) {
	raw, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	out := make([]RawRuleSet, len(raw))
	for i, set := range raw {
		set.Ext = Ptr(*set.Ext)
		set.Rules = slices.Clone(set.Rules)
		out[i] = set
	}
	return out, nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
