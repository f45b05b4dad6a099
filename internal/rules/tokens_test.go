package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pageaudit/internal/rules"
)

const (
	tokenRegistryListContentConstant    = "tokens:\n  - --accent-primary\n  - --surface-muted\n"
	tokenRegistryMappingContentConstant = "tokens:\n  --accent-primary: \"#e11d48\"\n  --surface-muted: \"#f4f4f5\"\n"
	tokenRegistryScalarContentConstant  = "tokens: accent\n"
	tokenRegistryEntryContentConstant   = "tokens:\n  - 42\n"
	tokenRegistryInvalidYAMLConstant    = "tokens: [unterminated\n"
	tokenRegistryFileNameConstant       = "tokens.yaml"
)

func TestParseTokenRegistry(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedNames []string
		expectedError error
	}{
		{name: "list", content: tokenRegistryListContentConstant, expectedNames: []string{"--accent-primary", "--surface-muted"}},
		{name: "mapping", content: tokenRegistryMappingContentConstant, expectedNames: []string{"--accent-primary", "--surface-muted"}},
		{name: "empty_document", content: "", expectedNames: []string{}},
		{name: "scalar_tokens", content: tokenRegistryScalarContentConstant, expectedError: rules.ErrConfigMalformed},
		{name: "non_string_entry", content: tokenRegistryEntryContentConstant, expectedError: rules.ErrConfigMalformed},
		{name: "invalid_yaml", content: tokenRegistryInvalidYAMLConstant, expectedError: rules.ErrConfigMalformed},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			registry, parseError := rules.ParseTokenRegistry(testCase.name, []byte(testCase.content))
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, parseError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedNames, registry.Names())
		})
	}
}

func TestLoadTokenRegistry(testInstance *testing.T) {
	emptyRegistry, emptyError := rules.LoadTokenRegistry("  ")
	require.NoError(testInstance, emptyError)
	require.Zero(testInstance, emptyRegistry.Len())

	temporaryDirectory := testInstance.TempDir()
	_, missingError := rules.LoadTokenRegistry(filepath.Join(temporaryDirectory, tokenRegistryFileNameConstant))
	require.ErrorIs(testInstance, missingError, rules.ErrConfigNotFound)

	registryPath := filepath.Join(temporaryDirectory, tokenRegistryFileNameConstant)
	require.NoError(testInstance, os.WriteFile(registryPath, []byte(tokenRegistryListContentConstant), 0o600))

	registry, loadError := rules.LoadTokenRegistry(registryPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, registry.Len())
	require.True(testInstance, registry.Contains("--accent-primary"))
	require.False(testInstance, registry.Contains("--accent-secondary"))
	require.True(testInstance, registry.ReferencedIn("color: var(--surface-muted, #fff);"))
	require.False(testInstance, registry.ReferencedIn("color: #fff;"))
}
