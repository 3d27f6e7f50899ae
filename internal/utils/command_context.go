package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	targetRepositoryContextKeyConstant      = commandContextKey("targetRepository")
)

type commandContextKey string

// CommandContextAccessor stores and retrieves values shared between cobra commands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, configurationFilePathContextKeyConstant)
}

// WithTargetRepository attaches the repository name (or "all") a command operates on.
func (accessor CommandContextAccessor) WithTargetRepository(parentContext context.Context, target string) context.Context {
	return withValue(parentContext, targetRepositoryContextKeyConstant, target)
}

// TargetRepository extracts the repository target from the provided context.
func (accessor CommandContextAccessor) TargetRepository(executionContext context.Context) (string, bool) {
	return stringValue(executionContext, targetRepositoryContextKeyConstant)
}

func withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
