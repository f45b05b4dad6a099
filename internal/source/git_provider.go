package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/temirov/pageaudit/internal/rules"
)

const (
	gitExecutableConstant              = "git"
	gitShowSubcommandConstant          = "show"
	gitObjectTemplateConstant          = "%s:%s"
	gitRelativePathPrefixConstant      = "./"
	gitRevisionMissingTemplateConstant = "%w: git revision must be provided"
	gitPathTemplateConstant            = "%w: %s: %v"
	gitShowFailedTemplateConstant      = "%w: git show %s exited with %d: %s"
	gitShowErrorTemplateConstant       = "%w: git show %s: %v"
	gitEncodingTemplateConstant        = "%w: %s is not valid UTF-8 text"
	gitShowStartedMessageConstant      = "git show started"
	gitShowCompletedMessageConstant    = "git show completed"
	gitShowFailedMessageConstant       = "git show failed"
	logFieldRevisionConstant           = "revision"
	logFieldObjectConstant             = "object"
	logFieldWorkingDirectoryConstant   = "working_directory"
	logFieldExitCodeConstant           = "exit_code"
	logFieldByteCountConstant          = "byte_count"
)

// GitRevisionProvider reads page source as committed at a git revision.
type GitRevisionProvider struct {
	executionContext context.Context
	runner           CommandRunner
	logger           *zap.Logger
	revision         string
	workingDirectory string
}

// NewGitRevisionProvider constructs a provider reading paths relative to workingDirectory
// (the current directory when empty) at the given revision. A nil logger discards git logs.
func NewGitRevisionProvider(executionContext context.Context, runner CommandRunner, logger *zap.Logger, revision string, workingDirectory string) *GitRevisionProvider {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if runner == nil {
		runner = NewOSCommandRunner()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitRevisionProvider{
		executionContext: executionContext,
		runner:           runner,
		logger:           logger,
		revision:         strings.TrimSpace(revision),
		workingDirectory: strings.TrimSpace(workingDirectory),
	}
}

// ReadSource returns the page text at the configured revision. Every failure wraps rules.ErrSourceUnreadable.
func (provider *GitRevisionProvider) ReadSource(path string) (string, error) {
	if len(provider.revision) == 0 {
		return "", fmt.Errorf(gitRevisionMissingTemplateConstant, rules.ErrSourceUnreadable)
	}
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return "", fmt.Errorf(sourcePathMissingTemplateConstant, rules.ErrSourceUnreadable)
	}

	objectPath, pathError := provider.objectPath(trimmedPath)
	if pathError != nil {
		return "", fmt.Errorf(gitPathTemplateConstant, rules.ErrSourceUnreadable, trimmedPath, pathError)
	}
	objectName := fmt.Sprintf(gitObjectTemplateConstant, provider.revision, objectPath)

	commandLogger := provider.logger.With(
		zap.String(logFieldRevisionConstant, provider.revision),
		zap.String(logFieldObjectConstant, objectName),
		zap.String(logFieldWorkingDirectoryConstant, provider.workingDirectory),
	)
	commandLogger.Debug(gitShowStartedMessageConstant)

	result, runError := provider.runner.Run(provider.executionContext, provider.workingDirectory, gitExecutableConstant, gitShowSubcommandConstant, objectName)
	if runError != nil {
		commandLogger.Debug(gitShowFailedMessageConstant, zap.Error(runError))
		return "", fmt.Errorf(gitShowErrorTemplateConstant, rules.ErrSourceUnreadable, objectName, runError)
	}
	if result.ExitCode != 0 {
		commandLogger.Debug(gitShowFailedMessageConstant, zap.Int(logFieldExitCodeConstant, result.ExitCode))
		return "", fmt.Errorf(gitShowFailedTemplateConstant, rules.ErrSourceUnreadable, objectName, result.ExitCode, strings.TrimSpace(result.StandardError))
	}
	commandLogger.Debug(
		gitShowCompletedMessageConstant,
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.Int(logFieldByteCountConstant, len(result.StandardOutput)),
	)
	if !utf8.ValidString(result.StandardOutput) {
		return "", fmt.Errorf(gitEncodingTemplateConstant, rules.ErrSourceUnreadable, objectName)
	}

	return result.StandardOutput, nil
}

// objectPath converts a path to the "./relative" form git resolves against the working directory.
func (provider *GitRevisionProvider) objectPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return gitRelativePathPrefixConstant + filepath.ToSlash(filepath.Clean(path)), nil
	}

	baseDirectory := provider.workingDirectory
	if len(baseDirectory) == 0 {
		baseDirectory = "."
	}
	absoluteBase, absoluteError := filepath.Abs(baseDirectory)
	if absoluteError != nil {
		return "", absoluteError
	}
	relativePath, relativeError := filepath.Rel(absoluteBase, path)
	if relativeError != nil {
		return "", relativeError
	}
	return gitRelativePathPrefixConstant + filepath.ToSlash(relativePath), nil
}
