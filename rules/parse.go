package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v2"

	"github.com/joeychilson/regexpoutline/logger"
)

// Decode parses a serialized rule specification. Input starting with '['
// is JSON, anything else is YAML.
func Decode(data []byte) ([]RawRuleSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []RawRuleSet{}, nil
	}
	if trimmed[0] == '[' {
		return decodeJSON(trimmed)
	}
	return decodeYAML(trimmed)
}

func decodeJSON(data []byte) ([]RawRuleSet, error) {
	var raw []RawRuleSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules as JSON: %w", err)
	}
	if raw == nil {
		raw = []RawRuleSet{}
	}
	return raw, nil
}

func decodeYAML(data []byte) ([]RawRuleSet, error) {
	var raw []RawRuleSet
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rules as YAML: %w", err)
	}
	if raw == nil {
		raw = []RawRuleSet{}
	}
	return raw, nil
}

// Parse decodes and resolves a serialized rule specification. Malformed
// input is logged and resolves to no rule sets.
func Parse(data []byte, log logger.Logger) []RuleSet {
	return parseWith(Decode, data, log)
}

// ParseJSON is Parse for input that must be JSON.
func ParseJSON(data []byte, log logger.Logger) []RuleSet {
	return parseWith(decodeJSON, data, log)
}

// ParseYAML is Parse for input that must be YAML.
func ParseYAML(data []byte, log logger.Logger) []RuleSet {
	return parseWith(decodeYAML, data, log)
}

func parseWith(decode func([]byte) ([]RawRuleSet, error), data []byte, log logger.Logger) []RuleSet {
	if log == nil {
		log = logger.Noop()
	}
	raw, err := decode(data)
	if err != nil {
		log.Error("failed to parse rule specification", "error", err, "input", truncate(data, 200))
		return []RuleSet{}
	}
	return Resolve(raw, log)
}

// ParseString is Parse for a specification held in a string, the way
// editor settings store it.
func ParseString(s string, log logger.Logger) []RuleSet {
	return Parse([]byte(s), log)
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
