// Package promptengine implements the variable substitution and validation
// rules for admin prompt templates. Placeholders use a {name} brace syntax.
// Everything here is a pure transformation; storage and logging stay with
// the callers.
package promptengine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultLanguage is used when the simple generation path omits a language.
const DefaultLanguage = "en"

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ExtractVariables returns the placeholder names appearing in prompt, in
// first-occurrence order with duplicates dropped. Whitespace inside the
// braces is trimmed, so "{ topic }" yields "topic".
func ExtractVariables(prompt string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(prompt, -1)
	seen := make(map[string]bool, len(matches))
	names := []string{}
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ReplaceVariables substitutes every occurrence of each provided key's
// marker with its value. Markers whose key is not in values are left in the
// output untouched; partially filled templates must stay recognizable
// instead of being silently stripped. Keys apply in sorted order so a value
// that itself contains a marker always yields the same output.
func ReplaceVariables(prompt string, values map[string]string) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	result := prompt
	for _, name := range names {
		marker := regexp.MustCompile(`\{\s*` + regexp.QuoteMeta(name) + `\s*\}`)
		result = marker.ReplaceAllLiteralString(result, values[name])
	}
	return result
}

// GetVariable is a total accessor over a value map: absent keys read as "".
func GetVariable(values map[string]string, name string) string {
	return values[name]
}

// Variable is one entry of a template's declared variable list. Stored
// lists mix two JSONB shapes, a bare string name and a descriptor object;
// Simple records which shape the entry came from.
type Variable struct {
	Name     string
	Label    string
	Default  string
	Required bool
	Simple   bool
}

type variableDescriptor struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Default  string `json:"default"`
	Required *bool  `json:"required"`
}

// UnmarshalJSON accepts either a bare JSON string or a descriptor object.
// Descriptors are required unless they carry an explicit "required": false.
func (v *Variable) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*v = Variable{Name: strings.TrimSpace(name), Simple: true}
		return nil
	}

	var desc variableDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("variable entry is neither a name nor a descriptor: %w", err)
	}
	required := true
	if desc.Required != nil {
		required = *desc.Required
	}
	*v = Variable{
		Name:     strings.TrimSpace(desc.Name),
		Label:    desc.Label,
		Default:  desc.Default,
		Required: required,
	}
	return nil
}

// ParseVariables decodes the JSONB variable list of a stored template.
// A null or empty column yields an empty list.
func ParseVariables(raw json.RawMessage) ([]Variable, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []Variable{}, nil
	}
	var vars []Variable
	if err := json.Unmarshal(raw, &vars); err != nil {
		return nil, fmt.Errorf("failed to decode template variables: %w", err)
	}
	return vars, nil
}

// IsRequired reports whether a value must be provided for this variable.
// Bare names are optional except for the distinguished name "topic", a
// legacy contract the simple generation path relies on. Descriptors are
// required unless they opted out.
func (v Variable) IsRequired() bool {
	if v.Simple {
		return v.Name == "topic"
	}
	return v.Required
}

// ValidateRequiredVariables checks that every required declared variable has
// a non-blank value. It returns true and an empty list when nothing is
// missing; otherwise the missing names in declaration order.
func ValidateRequiredVariables(vars []Variable, provided map[string]string) (bool, []string) {
	missing := []string{}
	for _, v := range vars {
		if !v.IsRequired() {
			continue
		}
		value, ok := provided[v.Name]
		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, v.Name)
		}
	}
	return len(missing) == 0, missing
}

// Template length bounds, applied after trimming.
const (
	minNameLength   = 3
	maxNameLength   = 100
	minPromptLength = 50
)

// ValidateTemplate runs the structural checks on a template, independent of
// runtime values. All violated rules are collected, not just the first.
// Declared-but-unused and used-but-undeclared placeholders do not fail
// validation; they come back as warnings for the caller to log.
func ValidateTemplate(name, prompt string, vars []Variable) (errs, warnings []string) {
	errs = []string{}
	warnings = []string{}

	// Bounds are in characters, not bytes; umlauts and CJK count as one.
	nameLength := utf8.RuneCountInString(strings.TrimSpace(name))
	if nameLength < minNameLength {
		errs = append(errs, fmt.Sprintf("name too short: must be at least %d characters", minNameLength))
	} else if nameLength > maxNameLength {
		errs = append(errs, fmt.Sprintf("name too long: must be at most %d characters", maxNameLength))
	}

	if utf8.RuneCountInString(strings.TrimSpace(prompt)) < minPromptLength {
		errs = append(errs, fmt.Sprintf("prompt too short: must be at least %d characters", minPromptLength))
	}

	declared := make(map[string]bool, len(vars))
	for _, v := range vars {
		declared[v.Name] = true
	}
	used := make(map[string]bool)
	for _, placeholder := range ExtractVariables(prompt) {
		used[placeholder] = true
		if !declared[placeholder] {
			warnings = append(warnings, fmt.Sprintf("placeholder {%s} is not declared in the variable list", placeholder))
		}
	}
	for _, v := range vars {
		if v.Name != "" && !used[v.Name] {
			warnings = append(warnings, fmt.Sprintf("declared variable %q never appears in the prompt", v.Name))
		}
	}

	return errs, warnings
}
