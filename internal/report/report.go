package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/temirov/pageaudit/internal/rules"
	"github.com/temirov/pageaudit/internal/scanner"
)

const (
	reportNamespaceNameConstant = "https://github.com/temirov/pageaudit/report"
	identityFieldSeparator      = "\x1f"
	identityRecordSeparator     = "\x1e"
)

var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(reportNamespaceNameConstant))

// Status is the overall outcome of a page audit.
type Status string

// Supported overall statuses.
const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Issue is one reported finding.
type Issue struct {
	Severity    rules.Severity    `json:"severity"`
	Rule        string            `json:"rule"`
	Category    string            `json:"category"`
	Finding     rules.FindingKind `json:"finding"`
	Description string            `json:"description"`
	Location    *scanner.Location `json:"location,omitempty"`
}

// CategorySummary counts passing rules within a category.
type CategorySummary struct {
	Name   string `json:"name"`
	Passed int    `json:"passed"`
	Total  int    `json:"total"`
}

// AllPassed reports whether every rule in the category passed.
func (summary CategorySummary) AllPassed() bool {
	return summary.Passed == summary.Total
}

// AuditReport aggregates the scan results of one page.
type AuditReport struct {
	ID         string            `json:"id"`
	Route      string            `json:"route"`
	Status     Status            `json:"status"`
	Categories []CategorySummary `json:"categories"`
	Issues     []Issue           `json:"issues"`
}

// Build aggregates results into a report. Issues are ordered by descending
// severity, then first-occurrence location with unlocated issues first, then rule name.
func Build(route string, results []scanner.ScanResult) AuditReport {
	auditReport := AuditReport{
		ID:         identify(route, results),
		Route:      route,
		Status:     OverallStatus(results),
		Categories: summarize(results),
		Issues:     []Issue{},
	}

	for _, result := range results {
		auditReport.Issues = append(auditReport.Issues, issuesFor(result)...)
	}

	sort.SliceStable(auditReport.Issues, func(left int, right int) bool {
		return issueLess(auditReport.Issues[left], auditReport.Issues[right])
	})

	return auditReport
}

// OverallStatus is fail when a critical or high rule failed, warn when only
// medium or low rules failed, and pass otherwise.
func OverallStatus(results []scanner.ScanResult) Status {
	status := StatusPass
	for _, result := range results {
		if result.Passed {
			continue
		}
		if result.Severity.Blocking() {
			return StatusFail
		}
		status = StatusWarn
	}
	return status
}

func issuesFor(result scanner.ScanResult) []Issue {
	if result.Passed {
		return nil
	}

	baseIssue := Issue{
		Severity:    result.Severity,
		Rule:        result.RuleName,
		Category:    result.Category,
		Finding:     result.Finding,
		Description: result.Description,
	}

	if result.Kind != rules.RuleKindAbsence || len(result.MatchedLocations) == 0 {
		if len(result.MatchedLocations) > 0 {
			firstLocation := result.MatchedLocations[0]
			baseIssue.Location = &firstLocation
		}
		return []Issue{baseIssue}
	}

	issues := make([]Issue, 0, len(result.MatchedLocations))
	for index := range result.MatchedLocations {
		locatedIssue := baseIssue
		location := result.MatchedLocations[index]
		locatedIssue.Location = &location
		issues = append(issues, locatedIssue)
	}
	return issues
}

func issueLess(left Issue, right Issue) bool {
	if left.Severity.Rank() != right.Severity.Rank() {
		return left.Severity.Rank() > right.Severity.Rank()
	}
	switch {
	case left.Location == nil && right.Location != nil:
		return true
	case left.Location != nil && right.Location == nil:
		return false
	case left.Location != nil && right.Location != nil && *left.Location != *right.Location:
		return left.Location.Before(*right.Location)
	}
	return left.Rule < right.Rule
}

func summarize(results []scanner.ScanResult) []CategorySummary {
	summaries := map[string]*CategorySummary{}
	for _, result := range results {
		summary, exists := summaries[result.Category]
		if !exists {
			summary = &CategorySummary{Name: result.Category}
			summaries[result.Category] = summary
		}
		summary.Total++
		if result.Passed {
			summary.Passed++
		}
	}

	categorySummaries := make([]CategorySummary, 0, len(summaries))
	for _, summary := range summaries {
		categorySummaries = append(categorySummaries, *summary)
	}
	sort.Slice(categorySummaries, func(left int, right int) bool {
		return categorySummaries[left].Name < categorySummaries[right].Name
	})
	return categorySummaries
}

// identify derives a name-based UUID so identical input yields an identical report.
func identify(route string, results []scanner.ScanResult) string {
	var builder strings.Builder
	builder.WriteString(route)
	for _, result := range results {
		builder.WriteString(identityRecordSeparator)
		builder.WriteString(result.RuleName)
		builder.WriteString(identityFieldSeparator)
		builder.WriteString(string(result.Severity))
		builder.WriteString(identityFieldSeparator)
		builder.WriteString(strconv.FormatBool(result.Passed))
		for _, location := range result.MatchedLocations {
			builder.WriteString(identityFieldSeparator)
			builder.WriteString(location.String())
		}
	}
	return uuid.NewSHA1(reportNamespace, []byte(builder.String())).String()
}
