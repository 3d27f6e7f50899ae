package flags

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	choicePlaceholderPrefix       = "<"
	choicePlaceholderSuffix       = ">"
	choiceSeparatorLiteral        = "|"
	choiceUsageEmptyTemplate      = "`%s`"
	choiceUsageFullTemplate       = "`%s` %s"
	unsupportedChoiceTemplate     = "unsupported %s %q (expected one of %s)"
	supportedChoicesJoinSeparator = ", "
)

// UnsupportedChoiceError reports a flag value outside its enumerated choices.
type UnsupportedChoiceError struct {
	FlagName  string
	Value     string
	Supported []string
}

// Error lists the supported choices.
func (choiceError UnsupportedChoiceError) Error() string {
	return fmt.Sprintf(unsupportedChoiceTemplate, choiceError.FlagName, choiceError.Value, strings.Join(choiceError.Supported, supportedChoicesJoinSeparator))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// NormalizeChoice lowercases and trims the value and confirms it is one of the choices.
func NormalizeChoice(flagName string, value string, choices []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	normalizedChoices := normalizeChoices(choices)
	if !lo.Contains(normalizedChoices, normalizedValue) {
		return "", UnsupportedChoiceError{FlagName: flagName, Value: value, Supported: normalizedChoices}
	}
	return normalizedValue, nil
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	return lo.Map(normalizeChoices(choices), func(choice string, _ int) string {
		if choice == normalizedDefault {
			return strings.ToUpper(choice)
		}
		return choice
	})
}

func normalizeChoices(choices []string) []string {
	trimmed := lo.FilterMap(choices, func(choice string, _ int) (string, bool) {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		return normalizedChoice, len(normalizedChoice) > 0
	})
	return lo.Uniq(trimmed)
}
