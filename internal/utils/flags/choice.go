package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	choiceUnsupportedTemplate   = "unsupported value %q; expected one of %s"
	choiceListSeparatorConstant = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder,
// for example "`<TEXT|json|csv>` Report format".
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ParseChoice matches a value case-insensitively against the choices and returns the canonical choice.
// An empty value selects defaultChoice.
func ParseChoice(rawValue string, defaultChoice string, choices []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return defaultChoice, nil
	}
	for _, choice := range choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalizedValue {
			return strings.TrimSpace(choice), nil
		}
	}
	return "", fmt.Errorf(choiceUnsupportedTemplate, rawValue, strings.Join(choices, choiceListSeparatorConstant))
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists || len(trimmedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}
