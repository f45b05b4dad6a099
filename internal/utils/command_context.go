package utils

import "context"

type commandContextKey struct {
	name string
}

var configurationFilePathContextKey = commandContextKey{name: "configurationFilePath"}

// CommandContextAccessor stores the resolved configuration file path in command contexts
// so subcommands can resolve relative paths against it.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKey, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path; the boolean is false when none was stored or it is empty.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, stored := executionContext.Value(configurationFilePathContextKey).(string)
	return configurationFilePath, stored && len(configurationFilePath) > 0
}
