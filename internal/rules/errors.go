package rules

import "errors"

// Infrastructure errors abort a single audit run.
var (
	// ErrConfigNotFound indicates the configuration store has no definition for the requested route.
	ErrConfigNotFound = errors.New("audit definition not found")
	// ErrConfigMalformed indicates a definition is missing required fields or carries invalid values.
	ErrConfigMalformed = errors.New("audit definition malformed")
	// ErrSourceUnreadable indicates the page source could not be read.
	ErrSourceUnreadable = errors.New("page source unreadable")
)

// FindingKind names the audit finding produced by a failed rule.
type FindingKind string

// Finding kinds recorded in scan results. They never abort a run.
const (
	FindingMissingRequiredElement FindingKind = "MissingRequiredElement"
	FindingForbiddenPatternFound  FindingKind = "ForbiddenPatternFound"
	FindingStructuralViolation    FindingKind = "StructuralViolation"
)

// FindingKindFor returns the finding reported when a rule of the given kind fails.
func FindingKindFor(kind RuleKind) FindingKind {
	switch kind {
	case RuleKindAbsence:
		return FindingForbiddenPatternFound
	case RuleKindStructural:
		return FindingStructuralViolation
	default:
		return FindingMissingRequiredElement
	}
}
