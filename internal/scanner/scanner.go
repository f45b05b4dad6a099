package scanner

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/temirov/pageaudit/internal/rules"
)

// Scanner evaluates every rule of an audit definition independently.
type Scanner struct{}

// NewScanner constructs a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns one result per rule, in rule order. Identical input always yields identical output.
func (scanner *Scanner) Scan(sourceText string, definition rules.AuditDefinition) []ScanResult {
	source := newIndexedSource(sourceText)
	tokens := definition.Tokens()

	definitionRules := definition.Rules()
	results := make([]ScanResult, 0, len(definitionRules))
	for _, rule := range definitionRules {
		results = append(results, evaluateRule(source, tokens, rule))
	}
	return results
}

func evaluateRule(source indexedSource, tokens rules.TokenRegistry, rule rules.Rule) ScanResult {
	result := ScanResult{
		RuleName:    rule.Name,
		Kind:        rule.Kind,
		Category:    rule.Category,
		Severity:    rule.Severity,
		Description: rule.Description,
	}

	switch rule.Kind {
	case rules.RuleKindPresence:
		offsets := source.matchOffsets(rule.Patterns, nil)
		result.Passed = len(offsets) > 0
		result.MatchedLocations = source.locations(offsets)
	case rules.RuleKindAbsence:
		var exemption *rules.TokenRegistry
		if rule.ExemptDesignTokens && tokens.Len() > 0 {
			exemption = &tokens
		}
		offsets := source.matchOffsets(rule.Patterns, exemption)
		result.Passed = len(offsets) == 0
		result.MatchedLocations = source.locations(offsets)
	case rules.RuleKindStructural:
		violations, anchor, passed := evaluateOrdering(source, rule)
		result.Passed = passed
		if passed {
			result.MatchedLocations = source.locations(anchor)
		} else {
			result.MatchedLocations = source.locations(violations)
		}
	}

	if !result.Passed {
		result.Finding = rules.FindingKindFor(rule.Kind)
		if rule.Kind == rules.RuleKindPresence {
			result.MatchedLocations = nil
		}
	}

	return result
}

// evaluateOrdering requires the first Before match to precede every After match.
// With no Before match the rule fails; offending After matches are the violations.
func evaluateOrdering(source indexedSource, rule rules.Rule) ([]int, []int, bool) {
	beforeOffsets := source.matchOffsets(rule.Before, nil)
	afterOffsets := source.matchOffsets(rule.After, nil)

	if len(beforeOffsets) == 0 {
		return afterOffsets, nil, false
	}

	firstBefore := beforeOffsets[0]
	var violations []int
	for _, offset := range afterOffsets {
		if offset < firstBefore {
			violations = append(violations, offset)
		}
	}
	if len(violations) > 0 {
		return violations, nil, false
	}
	return nil, []int{firstBefore}, true
}

type indexedSource struct {
	text       string
	lineStarts []int
}

func newIndexedSource(text string) indexedSource {
	lineStarts := []int{0}
	for offset := 0; offset < len(text); offset++ {
		if text[offset] == '\n' {
			lineStarts = append(lineStarts, offset+1)
		}
	}
	return indexedSource{text: text, lineStarts: lineStarts}
}

// matchOffsets returns sorted, deduplicated start offsets of accepted matches.
func (source indexedSource) matchOffsets(patterns []rules.Pattern, exemption *rules.TokenRegistry) []int {
	seen := make(map[int]struct{})
	var offsets []int
	for _, pattern := range patterns {
		if pattern.Expression == nil {
			continue
		}
		for _, bounds := range pattern.Expression.FindAllStringIndex(source.text, -1) {
			start, end := bounds[0], bounds[1]
			if _, duplicate := seen[start]; duplicate {
				continue
			}
			if !pattern.Accepts(source.text, start, end) {
				continue
			}
			if exemption != nil && exemption.ReferencedIn(source.lineText(start)) {
				continue
			}
			seen[start] = struct{}{}
			offsets = append(offsets, start)
		}
	}
	sort.Ints(offsets)
	return offsets
}

func (source indexedSource) lineIndex(offset int) int {
	return sort.Search(len(source.lineStarts), func(index int) bool {
		return source.lineStarts[index] > offset
	}) - 1
}

func (source indexedSource) lineText(offset int) string {
	lineStart := source.lineStarts[source.lineIndex(offset)]
	lineEnd := strings.IndexByte(source.text[lineStart:], '\n')
	if lineEnd < 0 {
		return source.text[lineStart:]
	}
	return source.text[lineStart : lineStart+lineEnd]
}

func (source indexedSource) locations(offsets []int) []Location {
	if len(offsets) == 0 {
		return nil
	}
	locations := make([]Location, 0, len(offsets))
	for _, offset := range offsets {
		index := source.lineIndex(offset)
		column := utf8.RuneCountInString(source.text[source.lineStarts[index]:offset]) + 1
		locations = append(locations, Location{Line: index + 1, Column: column})
	}
	return locations
}
