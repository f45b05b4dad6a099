package rules

import (
	"regexp"
	"sort"
)

// Built-in rule names.
const (
	BuiltinMetadataExport    = "metadata-export"
	BuiltinNoConsoleLog      = "no-console-log"
	BuiltinNoDebugger        = "no-debugger"
	BuiltinNoHardcodedColors = "no-hardcoded-colors"
	BuiltinHeadingHierarchy  = "heading-hierarchy"
	BuiltinImageAlt          = "img-alt"
	BuiltinHTMLLang          = "html-lang"
	BuiltinMainLandmark      = "main-landmark"
)

const characterReferencePrefixConstant = "&"

var (
	metadataExportExpression    = regexp.MustCompile(`export\s+const\s+metadata\b|generateMetadata`)
	consoleLogExpression        = regexp.MustCompile(`console\.log\s*\(`)
	debuggerExpression          = regexp.MustCompile(`\bdebugger\s*;`)
	hardcodedColorExpression    = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3,4})\b|\b(?:rgba?|hsla?)\(`)
	headingLevelOneExpression   = regexp.MustCompile(`(?m)<h1\b|^#[ \t]`)
	headingLevelTwoExpression   = regexp.MustCompile(`(?m)<h2\b|^##[ \t]`)
	imageTagExpression          = regexp.MustCompile(`<img\b(?:[^>{}"']|"[^"]*"|'[^']*'|\{(?:[^{}]|\{[^{}]*\})*\})*>`)
	imageAltAttributeExpression = regexp.MustCompile(`\balt\s*=`)
	htmlLangExpression          = regexp.MustCompile(`\blang\s*=`)
	mainLandmarkExpression      = regexp.MustCompile(`<main\b|role\s*=\s*["']main["']`)
)

var builtinRules = map[string]Rule{
	BuiltinMetadataExport: {
		Name:        BuiltinMetadataExport,
		Kind:        RuleKindPresence,
		Category:    CategoryCode,
		Severity:    SeverityHigh,
		Description: "Page exports metadata",
		Patterns:    []Pattern{ExpressionPattern(metadataExportExpression)},
	},
	BuiltinNoConsoleLog: {
		Name:        BuiltinNoConsoleLog,
		Kind:        RuleKindAbsence,
		Category:    CategoryCode,
		Severity:    SeverityHigh,
		Description: "Debug console.log statements are not shipped",
		Patterns:    []Pattern{ExpressionPattern(consoleLogExpression)},
	},
	BuiltinNoDebugger: {
		Name:        BuiltinNoDebugger,
		Kind:        RuleKindAbsence,
		Category:    CategoryCode,
		Severity:    SeverityMedium,
		Description: "debugger statements are not shipped",
		Patterns:    []Pattern{ExpressionPattern(debuggerExpression)},
	},
	BuiltinNoHardcodedColors: {
		Name:        BuiltinNoHardcodedColors,
		Kind:        RuleKindAbsence,
		Category:    CategoryDesign,
		Severity:    SeverityMedium,
		Description: "Colors come from design tokens, not literals",
		Patterns: []Pattern{{
			Source:            hardcodedColorExpression.String(),
			Expression:        hardcodedColorExpression,
			ExcludePrecededBy: []string{characterReferencePrefixConstant},
		}},
		ExemptDesignTokens: true,
	},
	BuiltinHeadingHierarchy: {
		Name:        BuiltinHeadingHierarchy,
		Kind:        RuleKindStructural,
		Category:    CategoryAccessibility,
		Severity:    SeverityHigh,
		Description: "A level-1 heading precedes every level-2 heading",
		Structural:  StructuralCheckHeadingHierarchy,
		Before:      []Pattern{ExpressionPattern(headingLevelOneExpression)},
		After:       []Pattern{ExpressionPattern(headingLevelTwoExpression)},
	},
	BuiltinImageAlt: {
		Name:        BuiltinImageAlt,
		Kind:        RuleKindAbsence,
		Category:    CategoryAccessibility,
		Severity:    SeverityHigh,
		Description: "Images declare alternative text",
		Patterns: []Pattern{{
			Source:     imageTagExpression.String(),
			Expression: imageTagExpression,
			Exclude:    imageAltAttributeExpression,
		}},
	},
	BuiltinHTMLLang: {
		Name:        BuiltinHTMLLang,
		Kind:        RuleKindPresence,
		Category:    CategoryAccessibility,
		Severity:    SeverityMedium,
		Description: "Document declares its language",
		Patterns:    []Pattern{ExpressionPattern(htmlLangExpression)},
	},
	BuiltinMainLandmark: {
		Name:        BuiltinMainLandmark,
		Kind:        RuleKindPresence,
		Category:    CategoryAccessibility,
		Severity:    SeverityMedium,
		Description: "Page content sits inside a main landmark",
		Patterns:    []Pattern{ExpressionPattern(mainLandmarkExpression)},
	},
}

// BuiltinRule returns a copy of the named catalog rule.
func BuiltinRule(name string) (Rule, bool) {
	rule, exists := builtinRules[name]
	if !exists {
		return Rule{}, false
	}
	return cloneRule(rule), true
}

// BuiltinRules returns the catalog sorted by rule name.
func BuiltinRules() []Rule {
	names := make([]string, 0, len(builtinRules))
	for name := range builtinRules {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := make([]Rule, 0, len(names))
	for _, name := range names {
		catalog = append(catalog, cloneRule(builtinRules[name]))
	}
	return catalog
}

func cloneRule(rule Rule) Rule {
	cloned := rule
	cloned.Patterns = append([]Pattern(nil), rule.Patterns...)
	cloned.Before = append([]Pattern(nil), rule.Before...)
	cloned.After = append([]Pattern(nil), rule.After...)
	return cloned
}
