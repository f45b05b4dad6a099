package scanner

import (
	"fmt"

	"github.com/temirov/pageaudit/internal/rules"
)

const locationTemplateConstant = "line %d, column %d"

// Location is a 1-based line and column within the page source.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders the location for human-readable reports.
func (location Location) String() string {
	return fmt.Sprintf(locationTemplateConstant, location.Line, location.Column)
}

// Before orders locations by line, then column.
func (location Location) Before(other Location) bool {
	if location.Line != other.Line {
		return location.Line < other.Line
	}
	return location.Column < other.Column
}

// ScanResult is the outcome of one rule for one page.
type ScanResult struct {
	RuleName         string
	Kind             rules.RuleKind
	Category         string
	Severity         rules.Severity
	Description      string
	Passed           bool
	Finding          rules.FindingKind
	MatchedLocations []Location
}
