package rules

import (
	"regexp"
	"sort"
	"strings"
)

// Categories assigned to derived rules.
const (
	CategoryContent       = "content"
	CategoryDesign        = "design"
	CategoryAccessibility = "accessibility"
	CategoryCode          = "code"
)

// Pattern matches page source text either literally or as a regular expression.
// Matches whose text also matches Exclude, or that directly follow one of
// ExcludePrecededBy, are ignored.
type Pattern struct {
	Source            string
	Expression        *regexp.Regexp
	Exclude           *regexp.Regexp
	ExcludePrecededBy []string
}

// LiteralPattern builds a pattern matching the exact text.
func LiteralPattern(text string) Pattern {
	return Pattern{Source: text, Expression: regexp.MustCompile(regexp.QuoteMeta(text))}
}

// ExpressionPattern builds a pattern from a compiled regular expression.
func ExpressionPattern(expression *regexp.Regexp) Pattern {
	return Pattern{Source: expression.String(), Expression: expression}
}

// Accepts reports whether the match text[start:end] survives the exclusion filters.
func (pattern Pattern) Accepts(text string, start int, end int) bool {
	for _, precedingText := range pattern.ExcludePrecededBy {
		if len(precedingText) > 0 && strings.HasSuffix(text[:start], precedingText) {
			return false
		}
	}
	if pattern.Exclude == nil {
		return true
	}
	return !pattern.Exclude.MatchString(text[start:end])
}

// StructuralCheck selects the evaluation performed by a structural rule.
type StructuralCheck string

// Supported structural checks.
const (
	StructuralCheckHeadingHierarchy StructuralCheck = "heading-hierarchy"
	StructuralCheckOrdering         StructuralCheck = "ordering"
)

// Rule is one declarative check applied to a page's source text.
type Rule struct {
	Name               string
	Kind               RuleKind
	Category           string
	Severity           Severity
	Description        string
	Patterns           []Pattern
	ExemptDesignTokens bool
	Structural         StructuralCheck
	Before             []Pattern
	After              []Pattern

	severityPinned bool
}

// AuditDefinition describes the audit of a single route. It is immutable once loaded.
type AuditDefinition struct {
	route                     string
	requiredContentSections   []string
	requiredDesignTokens      []string
	accessibilityRequirements []string
	severityDefaults          map[string]Severity
	explicitRules             []Rule
	rules                     []Rule
	tokens                    TokenRegistry
}

// Route returns the audited route.
func (definition AuditDefinition) Route() string {
	return definition.route
}

// RequiredContentSections returns the content sections in declared order.
func (definition AuditDefinition) RequiredContentSections() []string {
	return append([]string(nil), definition.requiredContentSections...)
}

// RequiredDesignTokens returns the required design tokens sorted by name.
func (definition AuditDefinition) RequiredDesignTokens() []string {
	return append([]string(nil), definition.requiredDesignTokens...)
}

// AccessibilityRequirements returns the accessibility requirements sorted by name.
func (definition AuditDefinition) AccessibilityRequirements() []string {
	return append([]string(nil), definition.accessibilityRequirements...)
}

// SeverityDefault returns the configured default severity for a rule name.
func (definition AuditDefinition) SeverityDefault(ruleName string) (Severity, bool) {
	severity, exists := definition.severityDefaults[ruleName]
	return severity, exists
}

// Rules returns the derived rule list: content sections, design tokens,
// accessibility requirements, then explicit rules.
func (definition AuditDefinition) Rules() []Rule {
	return append([]Rule(nil), definition.rules...)
}

// Tokens returns the design-token registry the definition was validated against.
func (definition AuditDefinition) Tokens() TokenRegistry {
	return definition.tokens
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	sort.Strings(unique)
	return unique
}
