package audit

import (
	"path/filepath"
	"strings"
)

const (
	definitionsConfigurationKeyConstant = "definitions"
	tokensConfigurationKeyConstant      = "tokens"
	formatConfigurationKeyConstant      = "format"
	parallelismConfigurationKeyConstant = "parallelism"
	configurationKeySeparatorConstant   = "."
	defaultDefinitionsPathConstant      = "audits.yaml"
	defaultFormatConstant               = "text"
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Definitions string `mapstructure:"definitions"`
	Tokens      string `mapstructure:"tokens"`
	Format      string `mapstructure:"format"`
	Parallelism int    `mapstructure:"parallelism"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Definitions: defaultDefinitionsPathConstant,
		Tokens:      "",
		Format:      defaultFormatConstant,
		Parallelism: defaultParallelismConstant,
	}
}

// DefaultConfigurationValues returns viper defaults keyed under the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, definitionsConfigurationKeyConstant): defaults.Definitions,
		prefixedKey(prefix, tokensConfigurationKeyConstant):      defaults.Tokens,
		prefixedKey(prefix, formatConfigurationKeyConstant):      defaults.Format,
		prefixedKey(prefix, parallelismConfigurationKeyConstant): defaults.Parallelism,
	}
}

// sanitize trims values and resolves relative paths against the configuration file directory.
func (configuration CommandConfiguration) sanitize(configurationFilePath string) CommandConfiguration {
	sanitized := configuration

	sanitized.Definitions = resolveRelativePath(configuration.Definitions, configurationFilePath)
	sanitized.Tokens = resolveRelativePath(configuration.Tokens, configurationFilePath)
	sanitized.Format = strings.TrimSpace(configuration.Format)
	if sanitized.Parallelism <= 0 {
		sanitized.Parallelism = defaultParallelismConstant
	}

	return sanitized
}

func resolveRelativePath(candidatePath string, configurationFilePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 || filepath.IsAbs(trimmedPath) || strings.HasPrefix(trimmedPath, "~") {
		return trimmedPath
	}
	trimmedConfigurationPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedConfigurationPath) == 0 {
		return trimmedPath
	}
	return filepath.Join(filepath.Dir(trimmedConfigurationPath), trimmedPath)
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
