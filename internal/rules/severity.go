package rules

import (
	"fmt"
	"strings"
)

const (
	severityCriticalStringConstant      = "critical"
	severityHighStringConstant          = "high"
	severityMediumStringConstant        = "medium"
	severityLowStringConstant           = "low"
	unsupportedSeverityTemplateConstant = "unsupported severity %q"
	unsupportedRuleKindTemplateConstant = "unsupported rule kind %q"
	ruleKindPresenceStringConstant      = "presence"
	ruleKindAbsenceStringConstant       = "absence"
	ruleKindStructuralStringConstant    = "structural"
)

// Severity ranks how strongly a failed rule affects the overall status.
type Severity string

// Supported severities ordered from most to least severe.
const (
	SeverityCritical Severity = Severity(severityCriticalStringConstant)
	SeverityHigh     Severity = Severity(severityHighStringConstant)
	SeverityMedium   Severity = Severity(severityMediumStringConstant)
	SeverityLow      Severity = Severity(severityLowStringConstant)
)

var severityRanks = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// ParseSeverity converts a case-insensitive severity name.
func ParseSeverity(rawValue string) (Severity, error) {
	candidate := Severity(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, known := severityRanks[candidate]; !known {
		return "", fmt.Errorf(unsupportedSeverityTemplateConstant, rawValue)
	}
	return candidate, nil
}

// Rank returns a positive ordinal for known severities and zero otherwise.
func (severity Severity) Rank() int {
	return severityRanks[severity]
}

// Blocking reports whether a failure at this severity fails the audit.
func (severity Severity) Blocking() bool {
	return severity.Rank() >= SeverityHigh.Rank()
}

// RuleKind enumerates the three evaluation strategies.
type RuleKind string

// Supported rule kinds.
const (
	RuleKindPresence   RuleKind = RuleKind(ruleKindPresenceStringConstant)
	RuleKindAbsence    RuleKind = RuleKind(ruleKindAbsenceStringConstant)
	RuleKindStructural RuleKind = RuleKind(ruleKindStructuralStringConstant)
)

// ParseRuleKind converts a case-insensitive rule kind name.
func ParseRuleKind(rawValue string) (RuleKind, error) {
	switch candidate := RuleKind(strings.ToLower(strings.TrimSpace(rawValue))); candidate {
	case RuleKindPresence, RuleKindAbsence, RuleKindStructural:
		return candidate, nil
	default:
		return "", fmt.Errorf(unsupportedRuleKindTemplateConstant, rawValue)
	}
}
