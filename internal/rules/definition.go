package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	contentRuleNamePrefixConstant        = "content:"
	designTokenRuleNamePrefixConstant    = "token:"
	accessibilityRuleNamePrefixConstant  = "a11y:"
	contentRuleDescriptionTemplate       = "Content section %q is present"
	designTokenRuleDescriptionTemplate   = "Design token %q is used"
	accessibilityRuleDescriptionTemplate = "Accessibility requirement %q is met"
	explicitRuleDescriptionTemplate      = "%s rule %s"
	malformedDefinitionTemplateConstant  = "%w: route %q: %s"
	emptyRouteMessageConstant            = "route must be provided"
	emptyContentSectionMessageConstant   = "content sections must be non-empty"
	emptyDesignTokenMessageConstant      = "design tokens must be non-empty"
	emptyAccessibilityMessageConstant    = "accessibility requirements must be non-empty"
	unknownDesignTokenTemplateConstant   = "design token %q is not in the registry"
	severityDefaultTemplateConstant      = "severity default for %q: %v"
	duplicateRuleNameTemplateConstant    = "duplicate rule name %q"
	ruleNameMissingMessageConstant       = "rule missing name"
	ruleKindTemplateConstant             = "rule %q: %v"
	ruleSeverityTemplateConstant         = "rule %q: %v"
	unknownBuiltinTemplateConstant       = "rule %q uses unknown built-in %q"
	builtinPatternOverrideTemplate       = "rule %q uses built-in %q and cannot redefine patterns"
	rulePatternMissingTemplateConstant   = "rule %q missing pattern"
	rulePatternInvalidTemplateConstant   = "rule %q has invalid pattern %q: %v"
	ruleOrderingMissingTemplateConstant  = "structural rule %q requires before and after patterns"
	ruleUnknownCheckTemplateConstant     = "structural rule %q has unknown check %q"
	ruleExemptionKindTemplateConstant    = "rule %q: exempt_design_tokens applies to absence rules only"
)

// PageDocument is the declarative form of one page definition in the configuration store.
type PageDocument struct {
	Route                     string            `mapstructure:"route"`
	RequiredContentSections   []string          `mapstructure:"content_sections"`
	RequiredDesignTokens      []string          `mapstructure:"design_tokens"`
	AccessibilityRequirements []string          `mapstructure:"accessibility"`
	SeverityDefaults          map[string]string `mapstructure:"severity_defaults"`
	Rules                     []RuleDocument    `mapstructure:"rules"`
}

// RuleDocument is the declarative form of an explicit rule.
type RuleDocument struct {
	Name               string   `mapstructure:"name"`
	Use                string   `mapstructure:"use"`
	Kind               string   `mapstructure:"kind"`
	Category           string   `mapstructure:"category"`
	Severity           string   `mapstructure:"severity"`
	Description        string   `mapstructure:"description"`
	Pattern            string   `mapstructure:"pattern"`
	Patterns           []string `mapstructure:"patterns"`
	Regex              bool     `mapstructure:"regex"`
	Unless             string   `mapstructure:"unless"`
	ExemptDesignTokens bool     `mapstructure:"exempt_design_tokens"`
	Check              string   `mapstructure:"check"`
	Before             string   `mapstructure:"before"`
	After              string   `mapstructure:"after"`
}

// NewAuditDefinition validates the document against the token registry and derives the rule list.
func NewAuditDefinition(document PageDocument, tokens TokenRegistry) (AuditDefinition, error) {
	route := strings.TrimSpace(document.Route)
	if len(route) == 0 {
		return AuditDefinition{}, malformed(route, emptyRouteMessageConstant)
	}

	definition := AuditDefinition{
		route:            route,
		severityDefaults: make(map[string]Severity, len(document.SeverityDefaults)),
		tokens:           tokens,
	}

	for ruleName, rawSeverity := range document.SeverityDefaults {
		severity, severityError := ParseSeverity(rawSeverity)
		if severityError != nil {
			return AuditDefinition{}, malformed(route, fmt.Sprintf(severityDefaultTemplateConstant, ruleName, severityError))
		}
		definition.severityDefaults[strings.TrimSpace(ruleName)] = severity
	}

	for _, section := range document.RequiredContentSections {
		trimmedSection := strings.TrimSpace(section)
		if len(trimmedSection) == 0 {
			return AuditDefinition{}, malformed(route, emptyContentSectionMessageConstant)
		}
		definition.requiredContentSections = append(definition.requiredContentSections, trimmedSection)
	}

	for _, token := range document.RequiredDesignTokens {
		trimmedToken := strings.TrimSpace(token)
		if len(trimmedToken) == 0 {
			return AuditDefinition{}, malformed(route, emptyDesignTokenMessageConstant)
		}
		if tokens.Len() > 0 && !tokens.Contains(trimmedToken) {
			return AuditDefinition{}, malformed(route, fmt.Sprintf(unknownDesignTokenTemplateConstant, trimmedToken))
		}
		definition.requiredDesignTokens = append(definition.requiredDesignTokens, trimmedToken)
	}
	definition.requiredDesignTokens = sortedUnique(definition.requiredDesignTokens)

	for _, requirement := range document.AccessibilityRequirements {
		trimmedRequirement := strings.TrimSpace(requirement)
		if len(trimmedRequirement) == 0 {
			return AuditDefinition{}, malformed(route, emptyAccessibilityMessageConstant)
		}
		definition.accessibilityRequirements = append(definition.accessibilityRequirements, trimmedRequirement)
	}
	definition.accessibilityRequirements = sortedUnique(definition.accessibilityRequirements)

	for _, ruleDocument := range document.Rules {
		rule, ruleError := buildExplicitRule(ruleDocument)
		if ruleError != nil {
			return AuditDefinition{}, malformed(route, ruleError.Error())
		}
		definition.explicitRules = append(definition.explicitRules, rule)
	}

	derivedRules, derivationError := definition.deriveRules()
	if derivationError != nil {
		return AuditDefinition{}, malformed(route, derivationError.Error())
	}
	definition.rules = derivedRules

	return definition, nil
}

func (definition AuditDefinition) deriveRules() ([]Rule, error) {
	var derived []Rule

	for _, section := range definition.requiredContentSections {
		derived = append(derived, Rule{
			Name:        contentRuleNamePrefixConstant + section,
			Kind:        RuleKindPresence,
			Category:    CategoryContent,
			Description: fmt.Sprintf(contentRuleDescriptionTemplate, section),
			Patterns:    []Pattern{LiteralPattern(section)},
		})
	}

	for _, token := range definition.requiredDesignTokens {
		derived = append(derived, Rule{
			Name:        designTokenRuleNamePrefixConstant + token,
			Kind:        RuleKindPresence,
			Category:    CategoryDesign,
			Description: fmt.Sprintf(designTokenRuleDescriptionTemplate, token),
			Patterns:    []Pattern{LiteralPattern(token)},
		})
	}

	for _, requirement := range definition.accessibilityRequirements {
		if builtin, isBuiltin := BuiltinRule(requirement); isBuiltin {
			derived = append(derived, builtin)
			continue
		}
		derived = append(derived, Rule{
			Name:        accessibilityRuleNamePrefixConstant + requirement,
			Kind:        RuleKindPresence,
			Category:    CategoryAccessibility,
			Description: fmt.Sprintf(accessibilityRuleDescriptionTemplate, requirement),
			Patterns:    []Pattern{LiteralPattern(requirement)},
		})
	}

	derived = append(derived, definition.explicitRules...)

	seenNames := make(map[string]struct{}, len(derived))
	for index := range derived {
		ruleName := derived[index].Name
		if _, duplicate := seenNames[ruleName]; duplicate {
			return nil, fmt.Errorf(duplicateRuleNameTemplateConstant, ruleName)
		}
		seenNames[ruleName] = struct{}{}
		derived[index].Severity = definition.resolveSeverity(derived[index])
	}

	return derived, nil
}

// resolveSeverity applies explicit > configured default > catalog default > medium.
func (definition AuditDefinition) resolveSeverity(rule Rule) Severity {
	if rule.severityPinned {
		return rule.Severity
	}
	if configured, exists := definition.severityDefaults[rule.Name]; exists {
		return configured
	}
	if rule.Severity.Rank() > 0 {
		return rule.Severity
	}
	return SeverityMedium
}

func buildExplicitRule(document RuleDocument) (Rule, error) {
	ruleName := strings.TrimSpace(document.Name)
	builtinName := strings.TrimSpace(document.Use)

	var rule Rule
	if len(builtinName) > 0 {
		if len(ruleName) == 0 {
			ruleName = builtinName
		}
		builtin, exists := BuiltinRule(builtinName)
		if !exists {
			return Rule{}, fmt.Errorf(unknownBuiltinTemplateConstant, ruleName, builtinName)
		}
		if len(document.Pattern) > 0 || len(document.Patterns) > 0 || len(document.Before) > 0 || len(document.After) > 0 || len(document.Unless) > 0 {
			return Rule{}, fmt.Errorf(builtinPatternOverrideTemplate, ruleName, builtinName)
		}
		rule = builtin
		rule.Name = ruleName
	} else {
		if len(ruleName) == 0 {
			return Rule{}, errors.New(ruleNameMissingMessageConstant)
		}
		kind, kindError := ParseRuleKind(document.Kind)
		if kindError != nil {
			return Rule{}, fmt.Errorf(ruleKindTemplateConstant, ruleName, kindError)
		}
		rule = Rule{
			Name:        ruleName,
			Kind:        kind,
			Category:    CategoryCode,
			Description: fmt.Sprintf(explicitRuleDescriptionTemplate, kind, ruleName),
		}
		if patternError := assignPatterns(&rule, document); patternError != nil {
			return Rule{}, patternError
		}
		if document.ExemptDesignTokens && kind != RuleKindAbsence {
			return Rule{}, fmt.Errorf(ruleExemptionKindTemplateConstant, ruleName)
		}
		rule.ExemptDesignTokens = document.ExemptDesignTokens
	}

	if category := strings.TrimSpace(document.Category); len(category) > 0 {
		rule.Category = category
	}
	if description := strings.TrimSpace(document.Description); len(description) > 0 {
		rule.Description = description
	}
	if len(strings.TrimSpace(document.Severity)) > 0 {
		severity, severityError := ParseSeverity(document.Severity)
		if severityError != nil {
			return Rule{}, fmt.Errorf(ruleSeverityTemplateConstant, ruleName, severityError)
		}
		rule.Severity = severity
		rule.severityPinned = true
	}

	return rule, nil
}

func assignPatterns(rule *Rule, document RuleDocument) error {
	if rule.Kind == RuleKindStructural {
		switch check := StructuralCheck(strings.TrimSpace(document.Check)); check {
		case StructuralCheckHeadingHierarchy:
			heading := builtinRules[BuiltinHeadingHierarchy]
			rule.Structural = StructuralCheckHeadingHierarchy
			rule.Before = append([]Pattern(nil), heading.Before...)
			rule.After = append([]Pattern(nil), heading.After...)
			return nil
		case "", StructuralCheckOrdering:
			if len(document.Before) == 0 || len(document.After) == 0 {
				return fmt.Errorf(ruleOrderingMissingTemplateConstant, rule.Name)
			}
			beforePattern, beforeError := compilePattern(rule.Name, document.Before, "", document.Regex)
			if beforeError != nil {
				return beforeError
			}
			afterPattern, afterError := compilePattern(rule.Name, document.After, "", document.Regex)
			if afterError != nil {
				return afterError
			}
			rule.Structural = StructuralCheckOrdering
			rule.Before = []Pattern{beforePattern}
			rule.After = []Pattern{afterPattern}
			return nil
		default:
			return fmt.Errorf(ruleUnknownCheckTemplateConstant, rule.Name, check)
		}
	}

	sources := append([]string(nil), document.Patterns...)
	if len(document.Pattern) > 0 {
		sources = append([]string{document.Pattern}, sources...)
	}
	if len(sources) == 0 {
		return fmt.Errorf(rulePatternMissingTemplateConstant, rule.Name)
	}
	for _, source := range sources {
		if len(source) == 0 {
			return fmt.Errorf(rulePatternMissingTemplateConstant, rule.Name)
		}
		pattern, compileError := compilePattern(rule.Name, source, document.Unless, document.Regex)
		if compileError != nil {
			return compileError
		}
		rule.Patterns = append(rule.Patterns, pattern)
	}
	return nil
}

func compilePattern(ruleName string, source string, unless string, isRegex bool) (Pattern, error) {
	expression, compileError := compileExpression(source, isRegex)
	if compileError != nil {
		return Pattern{}, fmt.Errorf(rulePatternInvalidTemplateConstant, ruleName, source, compileError)
	}
	pattern := Pattern{Source: source, Expression: expression}
	if len(unless) > 0 {
		exclusion, exclusionError := compileExpression(unless, isRegex)
		if exclusionError != nil {
			return Pattern{}, fmt.Errorf(rulePatternInvalidTemplateConstant, ruleName, unless, exclusionError)
		}
		pattern.Exclude = exclusion
	}
	return pattern, nil
}

func compileExpression(source string, isRegex bool) (*regexp.Regexp, error) {
	if !isRegex {
		source = regexp.QuoteMeta(source)
	}
	return regexp.Compile(source)
}

func malformed(route string, message string) error {
	return fmt.Errorf(malformedDefinitionTemplateConstant, ErrConfigMalformed, route, message)
}
